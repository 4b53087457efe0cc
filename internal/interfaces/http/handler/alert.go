package handler

import (
	"github.com/gin-gonic/gin"
	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/interfaces/http/dto"
	"github.com/motoshop/backend/internal/interfaces/http/middleware"
)

// AlertHandler handles /pagos/alertas endpoints
type AlertHandler struct {
	BaseHandler
	service AlertUseCases
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(service AlertUseCases) *AlertHandler {
	return &AlertHandler{service: service}
}

// List godoc
// @ID           listAlertas
// @Summary      List payment alerts
// @Tags         alertas
// @Produce      json
// @Param        page          query  int     false  "Page"       default(1)
// @Param        page_size     query  int     false  "Page size"  default(20)
// @Param        estado        query  string  false  "Status"     Enums(activa, leida, resuelta)
// @Param        tipo          query  string  false  "Type"       Enums(proximo_vencer, vencida, multiple_vencidas)
// @Param        activas_solo  query  bool    false  "Only active alerts"
// @Success      200  {object}  APIResponse[[]appcollections.AlertResponse]
// @Failure      400  {object}  ErrorResponse
// @Router       /pagos/alertas/ [get]
func (h *AlertHandler) List(c *gin.Context) {
	var q appcollections.ListAlertsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = dto.DefaultPageSize
	}

	alerts, total, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, alerts, total, q.Page, q.PageSize)
}

// Scan godoc
// @ID           generarAlertas
// @Summary      Run the alert scan now
// @Description  Creates missing alerts and resolves stale ones. Running it twice is a no-op.
// @Tags         alertas
// @Produce      json
// @Success      200  {object}  APIResponse[appcollections.ScanResponse]
// @Failure      409  {object}  ErrorResponse
// @Router       /pagos/alertas/generar/ [post]
func (h *AlertHandler) Scan(c *gin.Context) {
	result, err := h.service.ScanAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// MarkRead godoc
// @ID           marcarAlertaLeida
// @Summary      Mark an alert as read
// @Tags         alertas
// @Produce      json
// @Param        id   path      string  true  "Alert ID"  format(uuid)
// @Success      200  {object}  APIResponse[appcollections.AlertResponse]
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /pagos/alertas/{id}/leida/ [post]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, ok := h.parseID(c, "id", "alert")
	if !ok {
		return
	}
	alert, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alert)
}

// MarkResolved godoc
// @ID           marcarAlertaResuelta
// @Summary      Mark an alert as resolved
// @Tags         alertas
// @Produce      json
// @Param        id   path      string  true  "Alert ID"  format(uuid)
// @Success      200  {object}  APIResponse[appcollections.AlertResponse]
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /pagos/alertas/{id}/resuelta/ [post]
func (h *AlertHandler) MarkResolved(c *gin.Context) {
	id, ok := h.parseID(c, "id", "alert")
	if !ok {
		return
	}
	alert, err := h.service.MarkResolved(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alert)
}
