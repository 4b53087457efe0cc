package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/interfaces/http/middleware"
)

// ReportHandler handles the resumen and clientes-financiados endpoints
type ReportHandler struct {
	BaseHandler
	service ReportUseCases
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ReportUseCases) *ReportHandler {
	return &ReportHandler{service: service}
}

// Summary godoc
// @ID           resumenCobros
// @Summary      Collections summary as of today
// @Tags         reportes
// @Produce      json
// @Success      200  {object}  APIResponse[appcollections.SummaryResponse]
// @Router       /pagos/resumen-cobros/ [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ClientStandings godoc
// @ID           clientesFinanciados
// @Summary      Search financed clients
// @Description  Matches q against client name, document and sale ID. urgentes=true sorts most overdue first.
// @Tags         reportes
// @Produce      json
// @Param        q         query  string  false  "Search text"
// @Param        urgentes  query  bool    false  "Sort by urgency"
// @Success      200  {object}  APIResponse[[]appcollections.ClientStandingResponse]
// @Failure      400  {object}  ErrorResponse
// @Router       /pagos/clientes-financiados/ [get]
func (h *ReportHandler) ClientStandings(c *gin.Context) {
	var q appcollections.StandingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	standings, err := h.service.ClientStandings(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, standings)
}

// TopAtRisk godoc
// @ID           topRiesgo
// @Summary      Most urgent clients that still owe money
// @Tags         reportes
// @Produce      json
// @Param        n    query     int  false  "How many"
// @Success      200  {object}  APIResponse[[]appcollections.ClientStandingResponse]
// @Failure      400  {object}  ErrorResponse
// @Router       /pagos/clientes-financiados/top-riesgo/ [get]
func (h *ReportHandler) TopAtRisk(c *gin.Context) {
	var q appcollections.TopAtRiskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	standings, err := h.service.TopAtRisk(c.Request.Context(), q.N)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, standings)
}

// Export godoc
// @ID           exportarClientesFinanciados
// @Summary      Download financed client standings as a spreadsheet
// @Tags         reportes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        q    query  string  false  "Search text"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Router       /pagos/clientes-financiados/exportar/ [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var q appcollections.StandingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	file, err := h.service.ExportStandings(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Header("Content-Length", strconv.Itoa(len(file.Content)))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
