package router

import (
	"github.com/motoshop/backend/internal/interfaces/http/handler"
)

// CollectionsHandlers groups the handlers behind /pagos
type CollectionsHandlers struct {
	Installments *handler.InstallmentHandler
	Alerts       *handler.AlertHandler
	Reports      *handler.ReportHandler
}

// NewCollectionsGroup declares the cuotas, alertas and reporting routes.
// Paths keep their trailing slash; clients depend on it.
func NewCollectionsGroup(h CollectionsHandlers) *DomainGroup {
	pagos := NewDomainGroup("pagos", "/pagos")

	cuotas := pagos.Group("cuotas", "/cuotas")
	cuotas.GET("/", h.Installments.List)
	cuotas.POST("/generar/:ventaId/", h.Installments.GenerateSchedule)
	cuotas.GET("/:id/", h.Installments.Get)
	cuotas.PATCH("/:id/", h.Installments.Update)
	cuotas.POST("/:id/pagar/", h.Installments.RecordPayment)

	alertas := pagos.Group("alertas", "/alertas")
	alertas.GET("/", h.Alerts.List)
	alertas.POST("/generar/", h.Alerts.Scan)
	alertas.POST("/:id/leida/", h.Alerts.MarkRead)
	alertas.POST("/:id/resuelta/", h.Alerts.MarkResolved)

	pagos.GET("/resumen-cobros/", h.Reports.Summary)

	clientes := pagos.Group("clientes-financiados", "/clientes-financiados")
	clientes.GET("/", h.Reports.ClientStandings)
	clientes.GET("/top-riesgo/", h.Reports.TopAtRisk)
	clientes.GET("/exportar/", h.Reports.Export)

	return pagos
}
