package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
)

// InstallmentModel is the persistence model for the Installment aggregate
type InstallmentModel struct {
	AggregateModel
	SaleID     uuid.UUID                     `gorm:"column:venta_id;type:uuid;not null;uniqueIndex:idx_cuotas_venta_numero,priority:1"`
	Number     int                           `gorm:"column:numero_cuota;not null;uniqueIndex:idx_cuotas_venta_numero,priority:2"`
	Amount     decimal.Decimal               `gorm:"column:monto_cuota;type:decimal(14,2);not null"`
	PaidAmount decimal.Decimal               `gorm:"column:monto_pagado;type:decimal(14,2);not null"`
	DueDate    time.Time                     `gorm:"column:fecha_vencimiento;type:date;not null;index"`
	Status     collections.InstallmentStatus `gorm:"column:estado;type:varchar(20);not null;index"`
	LateFee    decimal.Decimal               `gorm:"column:monto_mora;type:decimal(14,2);not null"`
	PaidAt     *time.Time                    `gorm:"column:fecha_pago"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "cuotas"
}

// ToDomain converts the persistence model to a domain Installment
func (m *InstallmentModel) ToDomain() *collections.Installment {
	return &collections.Installment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleID:            m.SaleID,
		Number:            m.Number,
		Amount:            m.Amount,
		PaidAmount:        m.PaidAmount,
		DueDate:           collections.DateOf(m.DueDate),
		Status:            m.Status,
		LateFee:           m.LateFee,
		PaidAt:            m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Installment
func (m *InstallmentModel) FromDomain(i *collections.Installment) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.SaleID = i.SaleID
	m.Number = i.Number
	m.Amount = i.Amount
	m.PaidAmount = i.PaidAmount
	m.DueDate = collections.DateOf(i.DueDate)
	m.Status = i.Status
	m.LateFee = i.LateFee
	m.PaidAt = i.PaidAt
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment
func InstallmentModelFromDomain(i *collections.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

// AlertModel is the persistence model for the Alert aggregate
type AlertModel struct {
	AggregateModel
	SaleID        uuid.UUID               `gorm:"column:venta_id;type:uuid;not null;index"`
	InstallmentID *uuid.UUID              `gorm:"column:cuota_id;type:uuid;index"`
	Type          collections.AlertType   `gorm:"column:tipo_alerta;type:varchar(30);not null"`
	Status        collections.AlertStatus `gorm:"column:estado;type:varchar(20);not null;index"`
	Message       string                  `gorm:"column:mensaje;type:text;not null"`
	ReadAt        *time.Time              `gorm:"column:fecha_lectura"`
	ResolvedAt    *time.Time              `gorm:"column:fecha_resolucion"`
}

// TableName returns the table name for GORM
func (AlertModel) TableName() string {
	return "alertas_pago"
}

// ToDomain converts the persistence model to a domain Alert
func (m *AlertModel) ToDomain() *collections.Alert {
	return &collections.Alert{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleID:            m.SaleID,
		InstallmentID:     m.InstallmentID,
		Type:              m.Type,
		Status:            m.Status,
		Message:           m.Message,
		ReadAt:            m.ReadAt,
		ResolvedAt:        m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain Alert
func (m *AlertModel) FromDomain(a *collections.Alert) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.SaleID = a.SaleID
	m.InstallmentID = a.InstallmentID
	m.Type = a.Type
	m.Status = a.Status
	m.Message = a.Message
	m.ReadAt = a.ReadAt
	m.ResolvedAt = a.ResolvedAt
}

// AlertModelFromDomain creates a new persistence model from a domain Alert
func AlertModelFromDomain(a *collections.Alert) *AlertModel {
	m := &AlertModel{}
	m.FromDomain(a)
	return m
}

// PaymentModel is the persistence model for a ledger entry
type PaymentModel struct {
	BaseModel
	SaleID        uuid.UUID                 `gorm:"column:venta_id;type:uuid;not null;index"`
	InstallmentID uuid.UUID                 `gorm:"column:cuota_id;type:uuid;not null;index"`
	Amount        decimal.Decimal           `gorm:"column:monto;type:decimal(14,2);not null"`
	PaidAt        time.Time                 `gorm:"column:fecha_pago;not null"`
	Method        collections.PaymentMethod `gorm:"column:metodo;type:varchar(20);not null"`
	Reference     string                    `gorm:"column:referencia;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "pagos"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *collections.Payment {
	return &collections.Payment{
		BaseEntity:    m.BaseModel.ToDomain(),
		SaleID:        m.SaleID,
		InstallmentID: m.InstallmentID,
		Amount:        m.Amount,
		PaidAt:        m.PaidAt,
		Method:        m.Method,
		Reference:     m.Reference,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *collections.Payment) *PaymentModel {
	m := &PaymentModel{
		SaleID:        p.SaleID,
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount,
		PaidAt:        p.PaidAt,
		Method:        p.Method,
		Reference:     p.Reference,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// FinancedSaleModel maps the ventas_financiadas read model. The row is
// written by the sales module; this service never updates it.
type FinancedSaleModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClientID           uuid.UUID       `gorm:"column:cliente_id;type:uuid;not null;index"`
	ClientName         string          `gorm:"column:cliente_nombre;type:varchar(200);not null"`
	ClientDocument     string          `gorm:"column:cliente_documento;type:varchar(30);not null;index"`
	TotalAmount        decimal.Decimal `gorm:"column:monto_total;type:decimal(14,2);not null"`
	AmountWithInterest decimal.Decimal `gorm:"column:monto_con_intereses;type:decimal(14,2);not null"`
	InterestRate       decimal.Decimal `gorm:"column:tasa_interes;type:decimal(6,3);not null"`
	InstallmentCount   int             `gorm:"column:numero_cuotas;not null"`
	MonthlyPayment     decimal.Decimal `gorm:"column:pago_mensual;type:decimal(14,2);not null"`
	SaleDate           time.Time       `gorm:"column:fecha_venta;type:date;not null"`
	FirstDueDate       *time.Time      `gorm:"column:fecha_primer_vencimiento;type:date"`
	CreatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FinancedSaleModel) TableName() string {
	return "ventas_financiadas"
}

// ToDomain converts the persistence model to a domain FinancedSale
func (m *FinancedSaleModel) ToDomain() *collections.FinancedSale {
	sale := &collections.FinancedSale{
		ID:                 m.ID,
		ClientID:           m.ClientID,
		ClientName:         m.ClientName,
		ClientDocument:     m.ClientDocument,
		TotalAmount:        m.TotalAmount,
		AmountWithInterest: m.AmountWithInterest,
		InterestRate:       m.InterestRate,
		InstallmentCount:   m.InstallmentCount,
		MonthlyPayment:     m.MonthlyPayment,
		SaleDate:           collections.DateOf(m.SaleDate),
	}
	if m.FirstDueDate != nil {
		first := collections.DateOf(*m.FirstDueDate)
		sale.FirstDueDate = &first
	}
	return sale
}

// FinancedSaleModelFromDomain creates a persistence model for seeding and tests
func FinancedSaleModelFromDomain(s *collections.FinancedSale) *FinancedSaleModel {
	return &FinancedSaleModel{
		ID:                 s.ID,
		ClientID:           s.ClientID,
		ClientName:         s.ClientName,
		ClientDocument:     s.ClientDocument,
		TotalAmount:        s.TotalAmount,
		AmountWithInterest: s.AmountWithInterest,
		InterestRate:       s.InterestRate,
		InstallmentCount:   s.InstallmentCount,
		MonthlyPayment:     s.MonthlyPayment,
		SaleDate:           s.SaleDate,
		FirstDueDate:       s.FirstDueDate,
		CreatedAt:          s.SaleDate,
	}
}

// CollectionsModels lists every model for AutoMigrate in tests
func CollectionsModels() []any {
	return []any{
		&FinancedSaleModel{},
		&InstallmentModel{},
		&PaymentModel{},
		&AlertModel{},
	}
}
