// Package audit provides the domain-side audit contract and helpers for
// audit field enrichment in entities.
package audit

import (
	"context"

	appctx "cajaflow/internal/core/context"
)

// EnrichCreatedByDirect sets CreatedBy/UpdatedBy from the context actor.
// Use in before-create hooks. No-op for unauthenticated POS terminals.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedByDirect sets only UpdatedBy from the context actor.
// Use in before-update hooks.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
