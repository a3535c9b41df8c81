package cashsession

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/money"
)

func sessionOpenedAt(t time.Time) *Session {
	s := New(t.Format("2006-01-02"), money.Zero())
	s.OpenedAt = t
	return s
}

func TestResolveForTimestamp_PrefersNewestOpenSession(t *testing.T) {
	now := time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)
	yesterday := sessionOpenedAt(now.Add(-30 * time.Hour)) // never closed
	today := sessionOpenedAt(now.Add(-6 * time.Hour))

	// Both intervals contain the timestamp; the newest one wins.
	ts := now.Add(-1 * time.Hour)
	got := ResolveForTimestamp([]*Session{yesterday, today}, ts, now)
	require.NotNil(t, got)
	assert.Equal(t, today.ID, got.ID)

	// Order of the input slice must not matter.
	got = ResolveForTimestamp([]*Session{today, yesterday}, ts, now)
	require.NotNil(t, got)
	assert.Equal(t, today.ID, got.ID)
}

func TestResolveForTimestamp_FallsBackToOlderSession(t *testing.T) {
	now := time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)
	yesterday := sessionOpenedAt(now.Add(-30 * time.Hour))
	today := sessionOpenedAt(now.Add(-6 * time.Hour))

	// A timestamp before today's open only fits yesterday's interval.
	ts := now.Add(-10 * time.Hour)
	got := ResolveForTimestamp([]*Session{today, yesterday}, ts, now)
	require.NotNil(t, got)
	assert.Equal(t, yesterday.ID, got.ID)
}

func TestResolveForTimestamp_NoMatch(t *testing.T) {
	now := time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)
	today := sessionOpenedAt(now.Add(-6 * time.Hour))

	// Before the earliest open session: nothing matches, fail open.
	got := ResolveForTimestamp([]*Session{today}, now.Add(-48*time.Hour), now)
	assert.Nil(t, got)

	got = ResolveForTimestamp(nil, now, now)
	assert.Nil(t, got)
}

func TestResolveForTimestamp_SkipsClosedSessions(t *testing.T) {
	now := time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)
	closed := sessionOpenedAt(now.Add(-6 * time.Hour))
	require.NoError(t, closed.Close(now.Add(-2*time.Hour)))

	got := ResolveForTimestamp([]*Session{closed}, now.Add(-3*time.Hour), now)
	assert.Nil(t, got)
}
