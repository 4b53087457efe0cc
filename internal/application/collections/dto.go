package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates (fecha_vencimiento)
const DateLayout = "2006-01-02"

// ListInstallmentsQuery represents query parameters for GET /pagos/cuotas/
type ListInstallmentsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1" json:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" json:"page_size"`
	SaleID   string `form:"venta" binding:"omitempty,uuid" json:"venta"`
	Status   string `form:"estado" binding:"omitempty,oneof=pendiente parcial pagada vencida" json:"estado"`
	Overdue  bool   `form:"vencidas" json:"vencidas"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=numero_cuota fecha_vencimiento monto_cuota monto_pagado created_at" json:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc" json:"order_dir"`
}

// UpdateInstallmentRequest is the body of PATCH /pagos/cuotas/{id}/.
// Omitted fields are left untouched.
type UpdateInstallmentRequest struct {
	Amount     *decimal.Decimal `json:"monto_cuota"`
	PaidAmount *decimal.Decimal `json:"monto_pagado"`
	DueDate    *string          `json:"fecha_vencimiento" binding:"omitempty,datetime=2006-01-02"`
	LateFee    *decimal.Decimal `json:"monto_mora"`
}

// RecordPaymentRequest is the body of POST /pagos/cuotas/{id}/pagar/
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"monto"`
	PaidAt    *time.Time      `json:"fecha_pago"`
	Method    string          `json:"metodo" binding:"omitempty,oneof=efectivo transferencia tarjeta cheque"`
	Reference string          `json:"referencia" binding:"max=100"`
}

// ListAlertsQuery represents query parameters for GET /pagos/alertas/
type ListAlertsQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1" json:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100" json:"page_size"`
	SaleID     string `form:"venta" binding:"omitempty,uuid" json:"venta"`
	Status     string `form:"estado" binding:"omitempty,oneof=activa leida resuelta" json:"estado"`
	Type       string `form:"tipo" binding:"omitempty,oneof=proximo_vencer vencida multiple_vencidas" json:"tipo"`
	ActiveOnly bool   `form:"activas_solo" json:"activas_solo"`
	OrderBy    string `form:"order_by" binding:"omitempty,oneof=created_at updated_at tipo_alerta estado" json:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc" json:"order_dir"`
}

// StandingsQuery represents query parameters for GET /pagos/clientes-financiados/
type StandingsQuery struct {
	Query  string `form:"q" binding:"max=100" json:"q"`
	Urgent bool   `form:"urgentes" json:"urgentes"`
}

// TopAtRiskQuery represents query parameters for GET /pagos/clientes-financiados/top-riesgo/
type TopAtRiskQuery struct {
	N int `form:"n" binding:"omitempty,min=1,max=100" json:"n"`
}

// InstallmentResponse is a cuota as seen on the wire, classified as of FechaCorte
type InstallmentResponse struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"venta"`
	Number      int             `json:"numero_cuota"`
	Amount      decimal.Decimal `json:"monto_cuota"`
	PaidAmount  decimal.Decimal `json:"monto_pagado"`
	Outstanding decimal.Decimal `json:"saldo_pendiente"`
	DueDate     string          `json:"fecha_vencimiento"`
	Status      string          `json:"estado"`
	IsOverdue   bool            `json:"esta_vencida"`
	DaysOverdue int             `json:"dias_vencido"`
	LateFee     decimal.Decimal `json:"monto_mora"`
	PaidAt      *time.Time      `json:"fecha_pago,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToInstallmentResponse converts an installment and its classification
func ToInstallmentResponse(inst *collections.Installment, c collections.Classification) InstallmentResponse {
	return InstallmentResponse{
		ID:          inst.ID,
		SaleID:      inst.SaleID,
		Number:      inst.Number,
		Amount:      inst.Amount,
		PaidAmount:  inst.PaidAmount,
		Outstanding: c.Outstanding,
		DueDate:     inst.DueDate.Format(DateLayout),
		Status:      string(c.Status),
		IsOverdue:   c.IsOverdue,
		DaysOverdue: c.DaysOverdue,
		LateFee:     inst.LateFee,
		PaidAt:      inst.PaidAt,
		Version:     inst.Version,
		CreatedAt:   inst.CreatedAt,
		UpdatedAt:   inst.UpdatedAt,
	}
}

// PaymentResponse is a ledger entry
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	SaleID        uuid.UUID       `json:"venta"`
	InstallmentID uuid.UUID       `json:"cuota"`
	Amount        decimal.Decimal `json:"monto"`
	PaidAt        time.Time       `json:"fecha_pago"`
	Method        string          `json:"metodo"`
	Reference     string          `json:"referencia,omitempty"`
}

// ToPaymentResponse converts a payment
func ToPaymentResponse(p *collections.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		SaleID:        p.SaleID,
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount,
		PaidAt:        p.PaidAt,
		Method:        string(p.Method),
		Reference:     p.Reference,
	}
}

// RecordPaymentResponse returns the ledger entry and the installment after it
type RecordPaymentResponse struct {
	Payment     PaymentResponse     `json:"pago"`
	Installment InstallmentResponse `json:"cuota"`
}

// ScheduleResponse is the outcome of schedule generation
type ScheduleResponse struct {
	SaleID       uuid.UUID             `json:"venta"`
	Installments []InstallmentResponse `json:"cuotas"`
}

// AlertResponse is an alerta de pago as seen on the wire
type AlertResponse struct {
	ID            uuid.UUID  `json:"id"`
	SaleID        uuid.UUID  `json:"venta"`
	InstallmentID *uuid.UUID `json:"cuota"`
	Type          string     `json:"tipo_alerta"`
	Status        string     `json:"estado"`
	Message       string     `json:"mensaje"`
	CreatedAt     time.Time  `json:"fecha_creacion"`
	ReadAt        *time.Time `json:"fecha_lectura"`
	ResolvedAt    *time.Time `json:"fecha_resolucion"`
	Version       int        `json:"version"`
}

// ToAlertResponse converts an alert
func ToAlertResponse(a *collections.Alert) AlertResponse {
	return AlertResponse{
		ID:            a.ID,
		SaleID:        a.SaleID,
		InstallmentID: a.InstallmentID,
		Type:          string(a.Type),
		Status:        string(a.Status),
		Message:       a.Message,
		CreatedAt:     a.CreatedAt,
		ReadAt:        a.ReadAt,
		ResolvedAt:    a.ResolvedAt,
		Version:       a.Version,
	}
}

// ToAlertResponses converts a slice of alerts
func ToAlertResponses(alerts []*collections.Alert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = ToAlertResponse(a)
	}
	return out
}

// ScanResponse reports what an alert scan changed
type ScanResponse struct {
	Created             int             `json:"creadas"`
	Updated             int             `json:"actualizadas"`
	InstallmentsUpdated int             `json:"cuotas_actualizadas"`
	Alerts              []AlertResponse `json:"alertas"`
	CutoffDate          string          `json:"fecha_corte"`
}

// SummaryResponse is the resumen de cobros
type SummaryResponse struct {
	OverdueInstallments  int             `json:"cuotas_vencidas"`
	UpcomingInstallments int             `json:"cuotas_proximas_vencer"`
	TotalOverdueAmount   decimal.Decimal `json:"total_monto_vencido"`
	ActiveAlerts         int             `json:"alertas_activas"`
	HighRiskSales        int             `json:"ventas_alto_riesgo"`
	CutoffDate           string          `json:"fecha_corte"`
}

// ToSummaryResponse converts a collection summary
func ToSummaryResponse(s collections.CollectionSummary) SummaryResponse {
	return SummaryResponse{
		OverdueInstallments:  s.OverdueInstallments,
		UpcomingInstallments: s.UpcomingInstallments,
		TotalOverdueAmount:   s.TotalOverdueAmount,
		ActiveAlerts:         s.ActiveAlerts,
		HighRiskSales:        s.HighRiskSales,
		CutoffDate:           s.CutoffDate.Format(DateLayout),
	}
}

// NextInstallmentResponse is the proxima_cuota of a standing
type NextInstallmentResponse struct {
	Number      int             `json:"numero"`
	DueDate     string          `json:"fecha_vencimiento"`
	Amount      decimal.Decimal `json:"monto"`
	Outstanding decimal.Decimal `json:"saldo_pendiente"`
	DaysOverdue int             `json:"dias_vencido"`
}

// ClientStandingResponse is a cliente financiado
type ClientStandingResponse struct {
	ClientID           uuid.UUID                `json:"cliente_id"`
	ClientName         string                   `json:"cliente_nombre"`
	ClientDocument     string                   `json:"cliente_documento"`
	SaleID             uuid.UUID                `json:"venta_id"`
	TotalAmount        decimal.Decimal          `json:"monto_total"`
	AmountWithInterest decimal.Decimal          `json:"monto_con_intereses"`
	TotalPaid          decimal.Decimal          `json:"total_pagado"`
	Outstanding        decimal.Decimal          `json:"saldo_pendiente"`
	TotalLateFees      decimal.Decimal          `json:"total_mora"`
	InstallmentsTotal  int                      `json:"cuotas_totales"`
	InstallmentsPaid   int                      `json:"cuotas_pagadas"`
	InstallmentsLeft   int                      `json:"cuotas_restantes"`
	Next               *NextInstallmentResponse `json:"proxima_cuota"`
	InterestRate       decimal.Decimal          `json:"tasa_interes"`
	MonthlyPayment     decimal.Decimal          `json:"pago_mensual"`
	LastPaymentAt      *time.Time               `json:"ultimo_pago,omitempty"`
}

// ToClientStandingResponse converts a client standing
func ToClientStandingResponse(s collections.ClientStanding) ClientStandingResponse {
	resp := ClientStandingResponse{
		ClientID:           s.ClientID,
		ClientName:         s.ClientName,
		ClientDocument:     s.ClientDocument,
		SaleID:             s.SaleID,
		TotalAmount:        s.TotalAmount,
		AmountWithInterest: s.AmountWithInterest,
		TotalPaid:          s.TotalPaid,
		Outstanding:        s.Outstanding,
		TotalLateFees:      s.TotalLateFees,
		InstallmentsTotal:  s.InstallmentsTotal,
		InstallmentsPaid:   s.InstallmentsPaid,
		InstallmentsLeft:   s.InstallmentsLeft,
		InterestRate:       s.InterestRate,
		MonthlyPayment:     s.MonthlyPayment,
		LastPaymentAt:      s.LastPaymentAt,
	}
	if s.Next != nil {
		resp.Next = &NextInstallmentResponse{
			Number:      s.Next.Number,
			DueDate:     s.Next.DueDate.Format(DateLayout),
			Amount:      s.Next.Amount,
			Outstanding: s.Next.Outstanding,
			DaysOverdue: s.Next.DaysOverdue,
		}
	}
	return resp
}

// ToClientStandingResponses converts a slice of client standings
func ToClientStandingResponses(standings []collections.ClientStanding) []ClientStandingResponse {
	out := make([]ClientStandingResponse, len(standings))
	for i, s := range standings {
		out[i] = ToClientStandingResponse(s)
	}
	return out
}
