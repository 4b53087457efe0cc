package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements collections.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create appends a payment to the ledger
func (r *GormPaymentRepository) Create(ctx context.Context, payment *collections.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// FindBySale returns a sale's payments in the order they were received
func (r *GormPaymentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*collections.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("venta_id = ?", saleID).
		Order("fecha_pago ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// FindBySales returns the payments of several sales
func (r *GormPaymentRepository) FindBySales(ctx context.Context, saleIDs []uuid.UUID) ([]*collections.Payment, error) {
	if len(saleIDs) == 0 {
		return []*collections.Payment{}, nil
	}
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("venta_id IN ?", saleIDs).
		Order("fecha_pago ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

func paymentsToDomain(rows []models.PaymentModel) []*collections.Payment {
	out := make([]*collections.Payment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ collections.PaymentRepository = (*GormPaymentRepository)(nil)
