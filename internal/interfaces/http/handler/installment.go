package handler

import (
	"github.com/gin-gonic/gin"
	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/interfaces/http/dto"
	"github.com/motoshop/backend/internal/interfaces/http/middleware"
)

// InstallmentHandler handles /pagos/cuotas endpoints
type InstallmentHandler struct {
	BaseHandler
	service InstallmentUseCases
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(service InstallmentUseCases) *InstallmentHandler {
	return &InstallmentHandler{service: service}
}

// List godoc
// @ID           listCuotas
// @Summary      List installments
// @Description  Paginated cuotas, each classified as of today
// @Tags         cuotas
// @Produce      json
// @Param        page       query  int     false  "Page"       default(1)
// @Param        page_size  query  int     false  "Page size"  default(20)
// @Param        venta      query  string  false  "Sale ID"    format(uuid)
// @Param        estado     query  string  false  "Status"     Enums(pendiente, parcial, pagada, vencida)
// @Param        vencidas   query  bool    false  "Only overdue"
// @Success      200  {object}  APIResponse[[]appcollections.InstallmentResponse]
// @Failure      400  {object}  ErrorResponse
// @Router       /pagos/cuotas/ [get]
func (h *InstallmentHandler) List(c *gin.Context) {
	var q appcollections.ListInstallmentsQuery
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

	items, total, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, q.Page, q.PageSize)
}

// Get godoc
// @ID           getCuota
// @Summary      Get installment
// @Tags         cuotas
// @Produce      json
// @Param        id   path      string  true  "Installment ID"  format(uuid)
// @Success      200  {object}  APIResponse[appcollections.InstallmentResponse]
// @Failure      404  {object}  ErrorResponse
// @Router       /pagos/cuotas/{id}/ [get]
func (h *InstallmentHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "installment")
	if !ok {
		return
	}
	inst, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inst)
}

// Update godoc
// @ID           updateCuota
// @Summary      Partially update an installment
// @Description  Omitted fields are untouched. The result is reclassified.
// @Tags         cuotas
// @Accept       json
// @Produce      json
// @Param        id       path      string                                   true  "Installment ID"  format(uuid)
// @Param        request  body      appcollections.UpdateInstallmentRequest  true  "Fields to change"
// @Success      200      {object}  APIResponse[appcollections.InstallmentResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Router       /pagos/cuotas/{id}/ [patch]
func (h *InstallmentHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "installment")
	if !ok {
		return
	}
	var req appcollections.UpdateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	inst, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inst)
}

// RecordPayment godoc
// @ID           pagarCuota
// @Summary      Record a payment against an installment
// @Tags         cuotas
// @Accept       json
// @Produce      json
// @Param        id       path      string                                true  "Installment ID"  format(uuid)
// @Param        request  body      appcollections.RecordPaymentRequest  true  "Payment"
// @Success      201      {object}  APIResponse[appcollections.RecordPaymentResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /pagos/cuotas/{id}/pagar/ [post]
func (h *InstallmentHandler) RecordPayment(c *gin.Context) {
	id, ok := h.parseID(c, "id", "installment")
	if !ok {
		return
	}
	var req appcollections.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GenerateSchedule godoc
// @ID           generarCuotas
// @Summary      Generate the installment schedule of a financed sale
// @Tags         cuotas
// @Produce      json
// @Param        ventaId  path      string  true  "Sale ID"  format(uuid)
// @Success      201      {object}  APIResponse[appcollections.ScheduleResponse]
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Router       /pagos/cuotas/generar/{ventaId}/ [post]
func (h *InstallmentHandler) GenerateSchedule(c *gin.Context) {
	saleID, ok := h.parseID(c, "ventaId", "sale")
	if !ok {
		return
	}
	schedule, err := h.service.GenerateSchedule(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, schedule)
}
