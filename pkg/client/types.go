package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
)

// DateLayout is the layout of fecha_vencimiento
const DateLayout = "2006-01-02"

// Meta is the pagination block of list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Installment is a cuota as returned by the server
type Installment struct {
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
}

// Classification is an installment's state on a given day
type Classification struct {
	Status      string
	Outstanding decimal.Decimal
	IsOverdue   bool
	DaysOverdue int
}

// Due parses DueDate
func (i Installment) Due() (time.Time, error) {
	return time.Parse(DateLayout, i.DueDate)
}

// Classify recomputes the installment's state as of today with the same
// rules the server applies, so a cached list can be re-read on a later day
// without another round trip.
func (i Installment) Classify(today time.Time) (Classification, error) {
	due, err := i.Due()
	if err != nil {
		return Classification{}, collections.ErrInvalidDate
	}
	c, err := collections.Classify(i.Amount, i.PaidAmount, due, today)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Status:      string(c.Status),
		Outstanding: c.Outstanding,
		IsOverdue:   c.IsOverdue,
		DaysOverdue: c.DaysOverdue,
	}, nil
}

// Payment is a ledger entry
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	SaleID        uuid.UUID       `json:"venta"`
	InstallmentID uuid.UUID       `json:"cuota"`
	Amount        decimal.Decimal `json:"monto"`
	PaidAt        time.Time       `json:"fecha_pago"`
	Method        string          `json:"metodo"`
	Reference     string          `json:"referencia,omitempty"`
}

// PaymentResult is the answer to RecordPayment
type PaymentResult struct {
	Payment     Payment     `json:"pago"`
	Installment Installment `json:"cuota"`
}

// Schedule is the answer to GenerateSchedule
type Schedule struct {
	SaleID       uuid.UUID     `json:"venta"`
	Installments []Installment `json:"cuotas"`
}

// Alert is an alerta de pago
type Alert struct {
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

// ScanResult reports what an alert scan changed
type ScanResult struct {
	Created             int     `json:"creadas"`
	Updated             int     `json:"actualizadas"`
	InstallmentsUpdated int     `json:"cuotas_actualizadas"`
	Alerts              []Alert `json:"alertas"`
	CutoffDate          string  `json:"fecha_corte"`
}

// Summary is the resumen de cobros
type Summary struct {
	OverdueInstallments  int             `json:"cuotas_vencidas"`
	UpcomingInstallments int             `json:"cuotas_proximas_vencer"`
	TotalOverdueAmount   decimal.Decimal `json:"total_monto_vencido"`
	ActiveAlerts         int             `json:"alertas_activas"`
	HighRiskSales        int             `json:"ventas_alto_riesgo"`
	CutoffDate           string          `json:"fecha_corte"`
}

// NextInstallment is the proxima_cuota of a standing
type NextInstallment struct {
	Number      int             `json:"numero"`
	DueDate     string          `json:"fecha_vencimiento"`
	Amount      decimal.Decimal `json:"monto"`
	Outstanding decimal.Decimal `json:"saldo_pendiente"`
	DaysOverdue int             `json:"dias_vencido"`
}

// ClientStanding is a cliente financiado
type ClientStanding struct {
	ClientID           uuid.UUID        `json:"cliente_id"`
	ClientName         string           `json:"cliente_nombre"`
	ClientDocument     string           `json:"cliente_documento"`
	SaleID             uuid.UUID        `json:"venta_id"`
	TotalAmount        decimal.Decimal  `json:"monto_total"`
	AmountWithInterest decimal.Decimal  `json:"monto_con_intereses"`
	TotalPaid          decimal.Decimal  `json:"total_pagado"`
	Outstanding        decimal.Decimal  `json:"saldo_pendiente"`
	TotalLateFees      decimal.Decimal  `json:"total_mora"`
	InstallmentsTotal  int              `json:"cuotas_totales"`
	InstallmentsPaid   int              `json:"cuotas_pagadas"`
	InstallmentsLeft   int              `json:"cuotas_restantes"`
	Next               *NextInstallment `json:"proxima_cuota"`
	InterestRate       decimal.Decimal  `json:"tasa_interes"`
	MonthlyPayment     decimal.Decimal  `json:"pago_mensual"`
	LastPaymentAt      *time.Time       `json:"ultimo_pago,omitempty"`
}

// InstallmentFilter narrows ListInstallments
type InstallmentFilter struct {
	Page        int
	PageSize    int
	SaleID      *uuid.UUID
	Status      string
	OnlyOverdue bool
}

// AlertFilter narrows ListAlerts
type AlertFilter struct {
	Page       int
	PageSize   int
	Status     string
	Type       string
	ActiveOnly bool
}

// InstallmentPatch is a partial update; nil fields are not sent
type InstallmentPatch struct {
	Amount     *decimal.Decimal `json:"monto_cuota,omitempty"`
	PaidAmount *decimal.Decimal `json:"monto_pagado,omitempty"`
	DueDate    *string          `json:"fecha_vencimiento,omitempty"`
	LateFee    *decimal.Decimal `json:"monto_mora,omitempty"`
}

// PaymentInput is the body of RecordPayment
type PaymentInput struct {
	Amount    decimal.Decimal `json:"monto"`
	PaidAt    *time.Time      `json:"fecha_pago,omitempty"`
	Method    string          `json:"metodo,omitempty"`
	Reference string          `json:"referencia,omitempty"`
}
