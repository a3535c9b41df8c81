package dto

import (
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/payment"
)

// --- Requests ---

// AsignacionRequest assigns a booking to a table, customer or order.
type AsignacionRequest struct {
	Tipo   string `json:"tipo" binding:"required"`
	RefID  string `json:"refId" binding:"required"`
	Nombre string `json:"nombre"`
}

// ToAssignment converts the request to the domain assignment.
func (r AsignacionRequest) ToAssignment() (*booking.Assignment, error) {
	ref, err := id.Parse(r.RefID)
	if err != nil {
		return nil, apperror.NewValidation("invalid refId").WithDetail("value", r.RefID)
	}
	return &booking.Assignment{
		Type:  booking.AssignmentType(r.Tipo),
		RefID: ref,
		Name:  r.Nombre,
	}, nil
}

// CreateTurnoRequest creates a booking. Fecha defaults to today in the
// tenant's timezone.
type CreateTurnoRequest struct {
	Fecha         string             `json:"fecha"`
	Total         float64            `json:"total" binding:"min=0"`
	Asignacion    *AsignacionRequest `json:"asignacion"`
	Observaciones string             `json:"observaciones"`
}

// ToEntity builds the domain booking.
func (r CreateTurnoRequest) ToEntity() (*booking.Booking, error) {
	b := booking.New(r.Fecha)
	b.Total = money.New(r.Total)
	b.Notes = r.Observaciones

	if r.Asignacion != nil {
		assigned, err := r.Asignacion.ToAssignment()
		if err != nil {
			return nil, err
		}
		if err := b.Assign(assigned.Type, assigned.RefID, assigned.Name); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// UpdateTurnoRequest edits a booking. Absent fields stay unchanged.
// Estado accepts only "cancelado".
type UpdateTurnoRequest struct {
	Fecha               *string  `json:"fecha"`
	Total               *float64 `json:"total"`
	PagadoEfectivo      *float64 `json:"pagadoEfectivo"`
	PagadoTransferencia *float64 `json:"pagadoTransferencia"`
	Estado              *string  `json:"estado"`

	Asignacion       *AsignacionRequest `json:"asignacion"`
	QuitarAsignacion bool               `json:"quitarAsignacion"`

	Observaciones *string `json:"observaciones"`
}

// ToEdit converts the request to a reconciler edit command.
func (r UpdateTurnoRequest) ToEdit() (payment.BookingEdit, error) {
	edit := payment.BookingEdit{
		Date:            r.Fecha,
		Total:           moneyPtr(r.Total),
		PaidCash:        moneyPtr(r.PagadoEfectivo),
		PaidTransfer:    moneyPtr(r.PagadoTransferencia),
		ClearAssignment: r.QuitarAsignacion,
		Notes:           r.Observaciones,
	}

	if r.Estado != nil {
		if *r.Estado != string(booking.StatusCancelled) {
			return payment.BookingEdit{}, apperror.NewValidation("estado only accepts cancelado").
				WithDetail("value", *r.Estado)
		}
		edit.Cancel = true
	}

	if r.Asignacion != nil {
		assigned, err := r.Asignacion.ToAssignment()
		if err != nil {
			return payment.BookingEdit{}, err
		}
		edit.Assign = assigned
	}
	return edit, nil
}

// --- Responses ---

// AsignacionResponse mirrors the assignment union.
type AsignacionResponse struct {
	Tipo   string `json:"tipo"`
	RefID  string `json:"refId"`
	Nombre string `json:"nombre,omitempty"`
}

// TurnoResponse is the full booking view.
type TurnoResponse struct {
	ID                  string              `json:"id"`
	Numero              int                 `json:"numero"`
	Fecha               string              `json:"fecha"`
	Asignacion          *AsignacionResponse `json:"asignacion,omitempty"`
	Total               float64             `json:"total"`
	PagadoEfectivo      float64             `json:"pagadoEfectivo"`
	PagadoTransferencia float64             `json:"pagadoTransferencia"`
	Estado              string              `json:"estado"`
	Observaciones       string              `json:"observaciones,omitempty"`
	Archivado           bool                `json:"archivado"`
	CreadoEn            time.Time           `json:"creadoEn"`
	Version             int                 `json:"version"`
}

// FromBooking maps a booking to its API view.
func FromBooking(b *booking.Booking) *TurnoResponse {
	resp := &TurnoResponse{
		ID:                  b.ID.String(),
		Numero:              b.SequenceNumber,
		Fecha:               b.Date,
		Total:               money.Float64(b.Total),
		PagadoEfectivo:      money.Float64(b.PaidCash),
		PagadoTransferencia: money.Float64(b.PaidTransfer),
		Estado:              string(b.Status),
		Observaciones:       b.Notes,
		Archivado:           b.Archived,
		CreadoEn:            b.CreatedAt,
		Version:             b.Version,
	}
	if b.Assigned != nil {
		resp.Asignacion = &AsignacionResponse{
			Tipo:   string(b.Assigned.Type),
			RefID:  b.Assigned.RefID.String(),
			Nombre: b.Assigned.Name,
		}
	}
	return resp
}

// FromBookings maps a slice of bookings.
func FromBookings(bookings []*booking.Booking) []*TurnoResponse {
	out := make([]*TurnoResponse, len(bookings))
	for i, b := range bookings {
		out[i] = FromBooking(b)
	}
	return out
}
