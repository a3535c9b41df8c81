package cashsession

import (
	"sort"
	"time"
)

// ResolveForTimestamp picks the session a payment belongs to.
//
// Candidates are open sessions whose interval [OpenedAt, ClosedAt or now]
// contains ts. When several overlap (yesterday's caja never closed, a new
// one opened today), the most recently opened wins, which matches what
// the operator sees on screen. Returns nil when nothing matches; payments
// before the earliest open session deliberately fall through so the
// entity update still happens without a drawer movement.
//
// Pure function; the service wrapper feeds it the open-session list.
func ResolveForTimestamp(sessions []*Session, ts, now time.Time) *Session {
	ordered := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && s.IsOpen {
			ordered = append(ordered, s)
		}
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OpenedAt.After(ordered[j].OpenedAt)
	})

	for _, s := range ordered {
		if s.Contains(ts, now) {
			return s
		}
	}
	return nil
}
