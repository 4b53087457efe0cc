package collections

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/shared"
)

// InstallmentFilter defines filtering options for installment queries
type InstallmentFilter struct {
	shared.Filter
	SaleID      *uuid.UUID         // Filter by sale (venta)
	Status      *InstallmentStatus // Filter by status derived as of Today
	OverdueOnly bool               // Only installments overdue as of Today
	Today       time.Time          // Reference date for derived filters
}

// InstallmentRepository defines persistence for installments
type InstallmentRepository interface {
	// FindByID finds an installment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)

	// FindAll finds installments page by page
	FindAll(ctx context.Context, filter InstallmentFilter) ([]*Installment, error)

	// Count counts installments matching the filter
	Count(ctx context.Context, filter InstallmentFilter) (int64, error)

	// FindBySale returns a sale's installments ordered by number
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Installment, error)

	// FindBySales returns the installments of several sales
	FindBySales(ctx context.Context, saleIDs []uuid.UUID) ([]*Installment, error)

	// FindOpen returns every installment with a balance left
	FindOpen(ctx context.Context) ([]*Installment, error)

	// ExistsForSale reports whether a schedule was already generated for the sale
	ExistsForSale(ctx context.Context, saleID uuid.UUID) (bool, error)

	// Save updates an installment with optimistic locking
	Save(ctx context.Context, installment *Installment) error

	// CreateBatch inserts a new schedule
	CreateBatch(ctx context.Context, installments []*Installment) error
}

// AlertFilter defines filtering options for alert queries
type AlertFilter struct {
	shared.Filter
	SaleID     *uuid.UUID
	Status     *AlertStatus
	Type       *AlertType
	ActiveOnly bool // activas_solo
}

// AlertRepository defines persistence for alerts
type AlertRepository interface {
	// FindByID finds an alert by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// FindAll finds alerts page by page
	FindAll(ctx context.Context, filter AlertFilter) ([]*Alert, error)

	// Count counts alerts matching the filter
	Count(ctx context.Context, filter AlertFilter) (int64, error)

	// FindActive returns all alerts in estado activa
	FindActive(ctx context.Context) ([]*Alert, error)

	// Save inserts a new alert or updates an existing one with optimistic locking
	Save(ctx context.Context, alert *Alert) error
}

// FinancedSaleRepository reads financed sales
type FinancedSaleRepository interface {
	// FindByID finds a financed sale by ID
	FindByID(ctx context.Context, id uuid.UUID) (*FinancedSale, error)

	// FindByIDs returns the sales with the given IDs, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*FinancedSale, error)

	// Search matches client name or document; an empty query returns every sale up to limit
	Search(ctx context.Context, query string, limit int) ([]*FinancedSale, error)
}

// PaymentRepository persists the payment ledger
type PaymentRepository interface {
	// Create appends a payment
	Create(ctx context.Context, payment *Payment) error

	// FindBySale returns the payments of a sale
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Payment, error)

	// FindBySales returns the payments of several sales
	FindBySales(ctx context.Context, saleIDs []uuid.UUID) ([]*Payment, error)
}
