// Package dto provides Data Transfer Objects for API requests/responses.
//
// The wire vocabulary is the POS terminal's: efectivo/transferencia for
// the payment split, observaciones for free-form notes, estado for
// lifecycle states. Money travels as plain JSON numbers.
package dto

import (
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Payment split ---

// PagoRequest is the cash/transfer split sent with payment commands.
type PagoRequest struct {
	Efectivo      float64 `json:"efectivo" binding:"min=0"`
	Transferencia float64 `json:"transferencia" binding:"min=0"`
}

// Split converts the request to the domain payment split.
func (r PagoRequest) Split() money.Split {
	return money.NewSplit(r.Efectivo, r.Transferencia)
}

// parseOptionalID parses an optional UUID string from a request.
func parseOptionalID(raw *string) (*id.ID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func idPtrToString(i *id.ID) *string {
	if i == nil {
		return nil
	}
	s := i.String()
	return &s
}

func moneyPtr(f *float64) *money.Money {
	if f == nil {
		return nil
	}
	m := money.New(*f)
	return &m
}
