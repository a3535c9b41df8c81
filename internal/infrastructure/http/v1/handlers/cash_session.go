package handlers

import (
	"github.com/gin-gonic/gin"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/infrastructure/http/v1/dto"
)

// CashSessionHandler handles HTTP requests for cash sessions (cajas).
type CashSessionHandler struct {
	*BaseHandler
	service *cashsession.Service
}

// NewCashSessionHandler creates a new cash session handler.
func NewCashSessionHandler(base *BaseHandler, service *cashsession.Service) *CashSessionHandler {
	return &CashSessionHandler{BaseHandler: base, service: service}
}

// Abrir handles POST /caja/abrir - opens the day's session.
func (h *CashSessionHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Open(c.Request.Context(), req.Fecha, money.New(req.MontoInicial))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSession(session))
}

// Cerrar handles POST /caja/cerrar - closes a session and freezes its
// totals.
func (h *CashSessionHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sessionID, err := id.Parse(req.ID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	session, err := h.service.Close(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(session))
}

// Egreso handles POST /caja/egreso - records a drawer withdrawal.
func (h *CashSessionHandler) Egreso(c *gin.Context) {
	var req dto.EgresoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var sessionID *id.ID
	if req.CajaID != nil && *req.CajaID != "" {
		parsed, err := id.Parse(*req.CajaID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cajaId format"))
			return
		}
		sessionID = &parsed
	}

	session, err := h.service.RecordExpense(c.Request.Context(), sessionID, req.Split(), req.Observaciones, req.Fecha)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(session))
}

// Get handles GET /caja/:id - session detail with expense and sale logs.
func (h *CashSessionHandler) Get(c *gin.Context) {
	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	session, err := h.service.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(session))
}

// ListAbiertas handles GET /caja/abiertas - all open sessions.
func (h *CashSessionHandler) ListAbiertas(c *gin.Context) {
	sessions, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSessions(sessions))
}

// List handles GET /caja - session history with filters.
func (h *CashSessionHandler) List(c *gin.Context) {
	filter := cashsession.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("buscar")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.DateFrom = c.Query("desde")
	filter.DateTo = c.Query("hasta")

	if abierta := c.Query("abierta"); abierta != "" {
		val := abierta == "true"
		filter.IsOpen = &val
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromSessions(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers cash session routes.
func (h *CashSessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/abrir", h.Abrir)
	rg.POST("/cerrar", h.Cerrar)
	rg.POST("/egreso", h.Egreso)
	rg.GET("", h.List)
	rg.GET("/abiertas", h.ListAbiertas)
	rg.GET("/:id", h.Get)
}
