package dto

import (
	"time"

	"cajaflow/internal/core/money"
	"cajaflow/internal/domain/cashsession"
)

// --- Requests ---

// AbrirCajaRequest opens a cash session. Fecha defaults to today in the
// tenant's timezone.
type AbrirCajaRequest struct {
	Fecha        string  `json:"fecha"`
	MontoInicial float64 `json:"montoInicial" binding:"min=0"`
}

// CerrarCajaRequest closes a session by id.
type CerrarCajaRequest struct {
	ID string `json:"id" binding:"required"`
}

// EgresoRequest records a drawer withdrawal. CajaID targets a specific
// session; when empty the open session for Fecha (default today) takes
// the expense.
type EgresoRequest struct {
	CajaID        *string `json:"cajaId"`
	Efectivo      float64 `json:"efectivo" binding:"min=0"`
	Transferencia float64 `json:"transferencia" binding:"min=0"`
	Observaciones string  `json:"observaciones"`
	Fecha         string  `json:"fecha"`
}

// Split converts the expense amounts to the domain split.
func (r EgresoRequest) Split() money.Split {
	return money.NewSplit(r.Efectivo, r.Transferencia)
}

// --- Responses ---

// EgresoResponse is one expense line.
type EgresoResponse struct {
	LineID        string    `json:"lineId"`
	Efectivo      float64   `json:"efectivo"`
	Transferencia float64   `json:"transferencia"`
	Observaciones string    `json:"observaciones,omitempty"`
	CreadoEn      time.Time `json:"creadoEn"`
	CreadoPor     string    `json:"creadoPor,omitempty"`
}

// VentaResponse is one sale-log line.
type VentaResponse struct {
	LineID        string    `json:"lineId"`
	OrigenID      string    `json:"origenId"`
	OrigenTipo    string    `json:"origenTipo"`
	Efectivo      float64   `json:"efectivo"`
	Transferencia float64   `json:"transferencia"`
	CreadoEn      time.Time `json:"creadoEn"`
}

// CajaResponse is the full session view.
type CajaResponse struct {
	ID            string     `json:"id"`
	Numero        string     `json:"numero"`
	Fecha         string     `json:"fecha"`
	MontoInicial  float64    `json:"montoInicial"`
	Efectivo      float64    `json:"efectivo"`
	Transferencia float64    `json:"transferencia"`
	Abierta       bool       `json:"abierta"`
	AbiertaEn     time.Time  `json:"abiertaEn"`
	CerradaEn     *time.Time `json:"cerradaEn,omitempty"`

	// TotalCierre is the frozen accumulator sum; TotalPresentacion adds
	// the opening float back for the close dialog.
	TotalCierre       float64 `json:"totalCierre"`
	TotalPresentacion float64 `json:"totalPresentacion"`

	Version int `json:"version"`

	Egresos []EgresoResponse `json:"egresos"`
	Ventas  []VentaResponse  `json:"ventas,omitempty"`
}

// FromSession maps a session to its API view.
func FromSession(s *cashsession.Session) *CajaResponse {
	resp := &CajaResponse{
		ID:                s.ID.String(),
		Numero:            s.Number,
		Fecha:             s.Date,
		MontoInicial:      money.Float64(s.OpeningBalance),
		Efectivo:          money.Float64(s.AccumulatedCash),
		Transferencia:     money.Float64(s.AccumulatedTransfer),
		Abierta:           s.IsOpen,
		AbiertaEn:         s.OpenedAt,
		CerradaEn:         s.ClosedAt,
		TotalCierre:       money.Float64(s.ClosingTotal),
		TotalPresentacion: money.Float64(s.PresentationTotal()),
		Version:           s.Version,
		Egresos:           make([]EgresoResponse, len(s.Expenses)),
	}
	for i, e := range s.Expenses {
		resp.Egresos[i] = EgresoResponse{
			LineID:        e.LineID.String(),
			Efectivo:      money.Float64(e.Cash),
			Transferencia: money.Float64(e.Transfer),
			Observaciones: e.Note,
			CreadoEn:      e.CreatedAt,
			CreadoPor:     e.CreatedBy,
		}
	}
	for _, v := range s.Sales {
		resp.Ventas = append(resp.Ventas, VentaResponse{
			LineID:        v.LineID.String(),
			OrigenID:      v.SourceID.String(),
			OrigenTipo:    v.SourceType,
			Efectivo:      money.Float64(v.Cash),
			Transferencia: money.Float64(v.Transfer),
			CreadoEn:      v.CreatedAt,
		})
	}
	return resp
}

// FromSessions maps a slice of sessions.
func FromSessions(sessions []*cashsession.Session) []*CajaResponse {
	out := make([]*CajaResponse, len(sessions))
	for i, s := range sessions {
		out[i] = FromSession(s)
	}
	return out
}
