package handlers

import (
	"github.com/gin-gonic/gin"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/payment"
	"cajaflow/internal/infrastructure/http/v1/dto"
)

// BookingHandler handles HTTP requests for bookings (turnos).
type BookingHandler struct {
	*BaseHandler
	service    *booking.Service
	reconciler *payment.Reconciler
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(base *BaseHandler, service *booking.Service, reconciler *payment.Reconciler) *BookingHandler {
	return &BookingHandler{BaseHandler: base, service: service, reconciler: reconciler}
}

// Create handles POST /turnos.
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateTurnoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromBooking(b))
}

// Get handles GET /turnos/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	bookingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBooking(b))
}

// Update handles PUT /turnos/:id - field edits routed through the
// reconciler.
func (h *BookingHandler) Update(c *gin.Context) {
	bookingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateTurnoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	edit, err := req.ToEdit()
	if err != nil {
		h.Error(c, err)
		return
	}

	b, err := h.reconciler.ApplyBookingEdit(c.Request.Context(), bookingID, edit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBooking(b))
}

// Pago handles POST /turnos/:id/pago - additive payment registration.
func (h *BookingHandler) Pago(c *gin.Context) {
	bookingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.PagoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.reconciler.RegisterBookingPayment(c.Request.Context(), bookingID, req.Split())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBooking(b))
}

// Delete handles DELETE /turnos/:id. Paid bookings are archived instead
// of removed so reporting keeps them.
func (h *BookingHandler) Delete(c *gin.Context) {
	bookingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), bookingID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /turnos - list with filters.
func (h *BookingHandler) List(c *gin.Context) {
	filter := booking.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("buscar")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.Date = c.Query("fecha")
	filter.IncludeArchived = c.Query("incluirArchivados") == "true"

	if estado := c.Query("estado"); estado != "" {
		status := booking.Status(estado)
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromBookings(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers booking routes.
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/pago", h.Pago)
}
