package handlers

import (
	"github.com/gin-gonic/gin"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/order"
	"cajaflow/internal/domain/payment"
	"cajaflow/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for orders (pedidos).
//
// Reads go through the order service; anything that can move money
// (create/delete of tab-attached orders, PUT edits, payments) goes
// through the reconciler so the session and customer-balance side
// effects stay in one transaction.
type OrderHandler struct {
	*BaseHandler
	service    *order.Service
	reconciler *payment.Reconciler
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service, reconciler *payment.Reconciler) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service, reconciler: reconciler}
}

// Create handles POST /pedidos.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreatePedidoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.reconciler.CreateOrder(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromOrder(o))
}

// Get handles GET /pedidos/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// Update handles PUT /pedidos/:id - field edits routed through the
// reconciler.
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePedidoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	edit, err := req.ToEdit()
	if err != nil {
		h.Error(c, err)
		return
	}

	o, err := h.reconciler.ApplyOrderEdit(c.Request.Context(), orderID, edit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// Pago handles POST /pedidos/:id/pago - additive payment registration.
func (h *OrderHandler) Pago(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.PagoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.reconciler.RegisterOrderPayment(c.Request.Context(), orderID, req.Split())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// Delete handles DELETE /pedidos/:id. Paid orders are protected.
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.reconciler.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /pedidos - list with filters.
func (h *OrderHandler) List(c *gin.Context) {
	filter := order.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("buscar")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if estado := c.Query("estado"); estado != "" {
		status := order.Status(estado)
		filter.Status = &status
	}
	if clienteID := c.Query("clienteId"); clienteID != "" {
		if parsed, err := id.Parse(clienteID); err == nil {
			filter.CustomerID = &parsed
		}
	}
	if mesaID := c.Query("mesaId"); mesaID != "" {
		if parsed, err := id.Parse(mesaID); err == nil {
			filter.TableID = &parsed
		}
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromOrders(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers order routes.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/pago", h.Pago)
}
