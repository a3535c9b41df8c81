package dto

import (
	"time"

	"cajaflow/internal/core/money"
	"cajaflow/internal/domain/customer"
)

// --- Requests ---

// CreateClienteRequest creates a customer.
type CreateClienteRequest struct {
	Nombre        string `json:"nombre" binding:"required"`
	Telefono      string `json:"telefono"`
	Observaciones string `json:"observaciones"`
}

// ToEntity builds the domain customer.
func (r CreateClienteRequest) ToEntity() *customer.Customer {
	c := customer.New(r.Nombre)
	c.Phone = r.Telefono
	c.Notes = r.Observaciones
	return c
}

// UpdateClienteRequest edits a customer. The balance is not editable
// here; it only moves through payments and order attachments.
type UpdateClienteRequest struct {
	Nombre        *string `json:"nombre"`
	Telefono      *string `json:"telefono"`
	Observaciones *string `json:"observaciones"`
}

// ApplyTo writes the changed fields onto the entity.
func (r UpdateClienteRequest) ApplyTo(c *customer.Customer) {
	if r.Nombre != nil {
		c.Name = *r.Nombre
	}
	if r.Telefono != nil {
		c.Phone = *r.Telefono
	}
	if r.Observaciones != nil {
		c.Notes = *r.Observaciones
	}
}

// ClientePagoRequest settles part of a customer's tab.
type ClientePagoRequest struct {
	Efectivo      float64 `json:"efectivo" binding:"min=0"`
	Transferencia float64 `json:"transferencia" binding:"min=0"`
	Observaciones string  `json:"observaciones"`
}

// Split converts the payment amounts to the domain split.
func (r ClientePagoRequest) Split() money.Split {
	return money.NewSplit(r.Efectivo, r.Transferencia)
}

// --- Responses ---

// PagoClienteResponse is one direct payment line.
type PagoClienteResponse struct {
	LineID        string    `json:"lineId"`
	Efectivo      float64   `json:"efectivo"`
	Transferencia float64   `json:"transferencia"`
	Observaciones string    `json:"observaciones,omitempty"`
	CreadoEn      time.Time `json:"creadoEn"`
}

// ClienteResponse is the full customer view. Saldo is signed: positive
// means the customer owes the house.
type ClienteResponse struct {
	ID            string                `json:"id"`
	Nombre        string                `json:"nombre"`
	Telefono      string                `json:"telefono,omitempty"`
	Observaciones string                `json:"observaciones,omitempty"`
	Saldo         float64               `json:"saldo"`
	Pagos         []PagoClienteResponse `json:"pagos,omitempty"`
	Version       int                   `json:"version"`
}

// FromCustomer maps a customer to its API view.
func FromCustomer(c *customer.Customer) *ClienteResponse {
	resp := &ClienteResponse{
		ID:            c.ID.String(),
		Nombre:        c.Name,
		Telefono:      c.Phone,
		Observaciones: c.Notes,
		Saldo:         money.Float64(c.AccountBalance),
		Version:       c.Version,
	}
	for _, p := range c.Payments {
		resp.Pagos = append(resp.Pagos, PagoClienteResponse{
			LineID:        p.LineID.String(),
			Efectivo:      money.Float64(p.Cash),
			Transferencia: money.Float64(p.Transfer),
			Observaciones: p.Note,
			CreadoEn:      p.CreatedAt,
		})
	}
	return resp
}

// FromCustomers maps a slice of customers.
func FromCustomers(customers []*customer.Customer) []*ClienteResponse {
	out := make([]*ClienteResponse, len(customers))
	for i, c := range customers {
		out[i] = FromCustomer(c)
	}
	return out
}
