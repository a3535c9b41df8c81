package handlers

import (
	"github.com/gin-gonic/gin"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/customer"
	"cajaflow/internal/domain/payment"
	"cajaflow/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles HTTP requests for customers (clientes).
type CustomerHandler struct {
	*BaseHandler
	service    *customer.Service
	reconciler *payment.Reconciler
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, reconciler *payment.Reconciler) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service, reconciler: reconciler}
}

// Create handles POST /clientes.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateClienteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromCustomer(entity))
}

// Get handles GET /clientes/:id - includes the direct-payment log.
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCustomer(entity))
}

// Update handles PUT /clientes/:id. Balance edits are rejected by
// construction; the request carries no saldo field.
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateClienteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(entity)

	if err := h.service.Update(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCustomer(entity))
}

// Pago handles POST /clientes/:id/pago - a direct tab settlement.
func (h *CustomerHandler) Pago(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ClientePagoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.reconciler.RegisterCustomerPayment(c.Request.Context(), customerID, req.Split(), req.Observaciones)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCustomer(entity))
}

// Delete handles DELETE /clientes/:id. Customers with an outstanding
// balance are protected.
func (h *CustomerHandler) Delete(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), customerID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /clientes.
func (h *CustomerHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("buscar")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromCustomers(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/pago", h.Pago)
}
