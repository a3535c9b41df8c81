package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/domain/metrics"
)

// MetricsHandler handles HTTP requests for the reporting aggregator.
type MetricsHandler struct {
	*BaseHandler
	service *metrics.Service
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(base *BaseHandler, service *metrics.Service) *MetricsHandler {
	return &MetricsHandler{BaseHandler: base, service: service}
}

// Dia handles GET /metricas/dia?fecha=YYYY-MM-DD (default today).
func (h *MetricsHandler) Dia(c *gin.Context) {
	ctx := c.Request.Context()
	loc := tenant.GetLocation(ctx)

	day := time.Now().In(loc)
	if fecha := c.Query("fecha"); fecha != "" {
		parsed, err := time.ParseInLocation("2006-01-02", fecha, loc)
		if err != nil {
			h.Error(c, apperror.NewValidation("fecha must be YYYY-MM-DD").
				WithDetail("value", fecha))
			return
		}
		day = parsed
	}

	summary, err := h.service.SummarizeDay(ctx, day)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Semana handles GET /metricas/semana - the current calendar week.
func (h *MetricsHandler) Semana(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.service.SummarizeWeek(ctx, time.Now().In(tenant.GetLocation(ctx)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Mes handles GET /metricas/mes - the current calendar month.
func (h *MetricsHandler) Mes(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.service.SummarizeMonth(ctx, time.Now().In(tenant.GetLocation(ctx)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// RegisterRoutes registers metrics routes.
func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dia", h.Dia)
	rg.GET("/semana", h.Semana)
	rg.GET("/mes", h.Mes)
}
