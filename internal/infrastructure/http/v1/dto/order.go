package dto

import (
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain/order"
	"cajaflow/internal/domain/payment"
)

// --- Requests ---

// ItemRequest is one order line as sent by the terminal. Importe
// overrides cantidad * precioUnitario when present (line discounts).
type ItemRequest struct {
	ProductoID     *string  `json:"productoId"`
	ProductoNombre string   `json:"productoNombre" binding:"required"`
	Cantidad       int      `json:"cantidad" binding:"required,min=1"`
	PrecioUnitario float64  `json:"precioUnitario" binding:"min=0"`
	Importe        *float64 `json:"importe"`
}

// ToItem converts the request line to a domain item.
func (r ItemRequest) ToItem(lineNo int) (order.Item, error) {
	productID, err := parseOptionalID(r.ProductoID)
	if err != nil {
		return order.Item{}, apperror.NewValidation("invalid productoId").
			WithDetail("value", *r.ProductoID)
	}
	unitPrice := money.New(r.PrecioUnitario)
	amount := unitPrice.Mul(money.New(float64(r.Cantidad)))
	if r.Importe != nil {
		amount = money.New(*r.Importe)
	}
	return order.Item{
		LineID:      id.New(),
		LineNo:      lineNo,
		ProductID:   productID,
		ProductName: r.ProductoNombre,
		Quantity:    r.Cantidad,
		UnitPrice:   unitPrice,
		Amount:      amount,
	}, nil
}

func toItems(reqs []ItemRequest) ([]order.Item, error) {
	items := make([]order.Item, len(reqs))
	for i, r := range reqs {
		item, err := r.ToItem(i + 1)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

// CreatePedidoRequest creates an order.
type CreatePedidoRequest struct {
	MesaID        *string       `json:"mesaId"`
	MesaNombre    string        `json:"mesaNombre"`
	ClienteID     *string       `json:"clienteId"`
	ClienteNombre string        `json:"clienteNombre"`
	Total         float64       `json:"total" binding:"min=0"`
	Observaciones string        `json:"observaciones"`
	Items         []ItemRequest `json:"items"`
}

// ToEntity builds the domain order.
func (r CreatePedidoRequest) ToEntity() (*order.Order, error) {
	o := order.New()
	o.Total = money.New(r.Total)
	o.Notes = r.Observaciones

	tableID, err := parseOptionalID(r.MesaID)
	if err != nil {
		return nil, apperror.NewValidation("invalid mesaId").WithDetail("value", *r.MesaID)
	}
	o.TableID = tableID
	if tableID != nil {
		o.TableName = r.MesaNombre
	}

	customerID, err := parseOptionalID(r.ClienteID)
	if err != nil {
		return nil, apperror.NewValidation("invalid clienteId").WithDetail("value", *r.ClienteID)
	}
	if customerID != nil {
		if err := o.AttachCustomer(*customerID, r.ClienteNombre); err != nil {
			return nil, err
		}
	}

	items, err := toItems(r.Items)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// UpdatePedidoRequest edits an order. Absent fields stay unchanged.
// Estado accepts only "cancelado"; paid state is reached through
// payments, never set directly.
type UpdatePedidoRequest struct {
	Total               *float64 `json:"total"`
	PagadoEfectivo      *float64 `json:"pagadoEfectivo"`
	PagadoTransferencia *float64 `json:"pagadoTransferencia"`
	Estado              *string  `json:"estado"`

	ClienteID     *string `json:"clienteId"`
	ClienteNombre string  `json:"clienteNombre"`
	QuitarCliente bool    `json:"quitarCliente"`

	MesaID     *string `json:"mesaId"`
	MesaNombre string  `json:"mesaNombre"`
	QuitarMesa bool    `json:"quitarMesa"`

	Observaciones *string        `json:"observaciones"`
	Items         *[]ItemRequest `json:"items"`
}

// ToEdit converts the request to a reconciler edit command.
func (r UpdatePedidoRequest) ToEdit() (payment.OrderEdit, error) {
	edit := payment.OrderEdit{
		Total:        moneyPtr(r.Total),
		PaidCash:     moneyPtr(r.PagadoEfectivo),
		PaidTransfer: moneyPtr(r.PagadoTransferencia),
		Detach:       r.QuitarCliente,
		ClearTable:   r.QuitarMesa,
		Notes:        r.Observaciones,
	}

	if r.Estado != nil {
		if *r.Estado != string(order.StatusCancelled) {
			return payment.OrderEdit{}, apperror.NewValidation("estado only accepts cancelado").
				WithDetail("value", *r.Estado)
		}
		edit.Cancel = true
	}

	customerID, err := parseOptionalID(r.ClienteID)
	if err != nil {
		return payment.OrderEdit{}, apperror.NewValidation("invalid clienteId").
			WithDetail("value", *r.ClienteID)
	}
	edit.AttachCustomer = customerID
	edit.CustomerName = r.ClienteNombre

	tableID, err := parseOptionalID(r.MesaID)
	if err != nil {
		return payment.OrderEdit{}, apperror.NewValidation("invalid mesaId").
			WithDetail("value", *r.MesaID)
	}
	edit.TableID = tableID
	edit.TableName = r.MesaNombre

	if r.Items != nil {
		items, err := toItems(*r.Items)
		if err != nil {
			return payment.OrderEdit{}, err
		}
		edit.Items = items
	}
	return edit, nil
}

// --- Responses ---

// ItemResponse is one order line.
type ItemResponse struct {
	LineID         string  `json:"lineId"`
	ProductoID     *string `json:"productoId,omitempty"`
	ProductoNombre string  `json:"productoNombre"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario"`
	Importe        float64 `json:"importe"`
}

// PedidoResponse is the full order view.
type PedidoResponse struct {
	ID                  string         `json:"id"`
	Numero              string         `json:"numero"`
	MesaID              *string        `json:"mesaId,omitempty"`
	MesaNombre          string         `json:"mesaNombre,omitempty"`
	ClienteID           *string        `json:"clienteId,omitempty"`
	ClienteNombre       string         `json:"clienteNombre,omitempty"`
	Total               float64        `json:"total"`
	PagadoEfectivo      float64        `json:"pagadoEfectivo"`
	PagadoTransferencia float64        `json:"pagadoTransferencia"`
	Estado              string         `json:"estado"`
	Observaciones       string         `json:"observaciones,omitempty"`
	Items               []ItemResponse `json:"items"`
	CreadoEn            time.Time      `json:"creadoEn"`
	Version             int            `json:"version"`
}

// FromOrder maps an order to its API view.
func FromOrder(o *order.Order) *PedidoResponse {
	resp := &PedidoResponse{
		ID:                  o.ID.String(),
		Numero:              o.Number,
		MesaID:              idPtrToString(o.TableID),
		MesaNombre:          o.TableName,
		ClienteID:           idPtrToString(o.CustomerID),
		ClienteNombre:       o.CustomerName,
		Total:               money.Float64(o.Total),
		PagadoEfectivo:      money.Float64(o.PaidCash),
		PagadoTransferencia: money.Float64(o.PaidTransfer),
		Estado:              string(o.Status),
		Observaciones:       o.Notes,
		Items:               make([]ItemResponse, len(o.Items)),
		CreadoEn:            o.CreatedAt,
		Version:             o.Version,
	}
	for i, it := range o.Items {
		resp.Items[i] = ItemResponse{
			LineID:         it.LineID.String(),
			ProductoID:     idPtrToString(it.ProductID),
			ProductoNombre: it.ProductName,
			Cantidad:       it.Quantity,
			PrecioUnitario: money.Float64(it.UnitPrice),
			Importe:        money.Float64(it.Amount),
		}
	}
	return resp
}

// FromOrders maps a slice of orders.
func FromOrders(orders []*order.Order) []*PedidoResponse {
	out := make([]*PedidoResponse, len(orders))
	for i, o := range orders {
		out[i] = FromOrder(o)
	}
	return out
}
