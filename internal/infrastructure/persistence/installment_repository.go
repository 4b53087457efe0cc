package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/motoshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const sqlDate = "2006-01-02"

// GormInstallmentRepository implements collections.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists installments page by page
func (r *GormInstallmentRepository) FindAll(ctx context.Context, filter collections.InstallmentFilter) ([]*collections.Installment, error) {
	page := filter.Filter.Normalized()

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InstallmentModel{}), filter)
	if filter.OrderBy == "" {
		query = query.Order("fecha_vencimiento ASC").Order("numero_cuota ASC")
	} else {
		field := ValidateSortField(filter.OrderBy, InstallmentSortFields, "fecha_vencimiento")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	}

	var rows []models.InstallmentModel
	if err := query.Offset(page.Offset()).Limit(page.PageSize).Find(&rows).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(rows), nil
}

// Count counts installments matching the filter
func (r *GormInstallmentRepository) Count(ctx context.Context, filter collections.InstallmentFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InstallmentModel{}), filter).Count(&count).Error
	return count, err
}

// FindBySale returns a sale's installments ordered by number
func (r *GormInstallmentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*collections.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("venta_id = ?", saleID).
		Order("numero_cuota ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(rows), nil
}

// FindBySales returns the installments of several sales, grouped by sale then number
func (r *GormInstallmentRepository) FindBySales(ctx context.Context, saleIDs []uuid.UUID) ([]*collections.Installment, error) {
	if len(saleIDs) == 0 {
		return []*collections.Installment{}, nil
	}
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("venta_id IN ?", saleIDs).
		Order("venta_id ASC").Order("numero_cuota ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(rows), nil
}

// FindOpen returns every installment with a balance left
func (r *GormInstallmentRepository) FindOpen(ctx context.Context) ([]*collections.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("monto_pagado < monto_cuota").
		Order("venta_id ASC").Order("numero_cuota ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(rows), nil
}

// ExistsForSale reports whether the sale already has a schedule
func (r *GormInstallmentRepository) ExistsForSale(ctx context.Context, saleID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("venta_id = ?", saleID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new installment or updates an existing one. Updates only
// apply when the stored version still matches the version that was read.
func (r *GormInstallmentRepository) Save(ctx context.Context, inst *collections.Installment) error {
	if inst.IsNew() {
		if err := r.db.WithContext(ctx).Create(models.InstallmentModelFromDomain(inst)).Error; err != nil {
			return translateWriteError(err)
		}
		inst.MarkPersisted()
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("id = ? AND version = ?", inst.ID, inst.PersistedVersion()).
		Updates(map[string]any{
			"monto_cuota":       inst.Amount,
			"monto_pagado":      inst.PaidAmount,
			"fecha_vencimiento": inst.DueDate.Format(sqlDate),
			"estado":            inst.Status,
			"monto_mora":        inst.LateFee,
			"fecha_pago":        inst.PaidAt,
			"version":           inst.Version,
			"updated_at":        inst.UpdatedAt,
		})
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, inst.ID)
	}
	inst.MarkPersisted()
	return nil
}

// CreateBatch inserts a whole schedule
func (r *GormInstallmentRepository) CreateBatch(ctx context.Context, installments []*collections.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	rows := make([]*models.InstallmentModel, len(installments))
	for i, inst := range installments {
		rows[i] = models.InstallmentModelFromDomain(inst)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return translateWriteError(err)
	}
	for _, inst := range installments {
		inst.MarkPersisted()
	}
	return nil
}

func (r *GormInstallmentRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InstallmentModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Installment was modified by another request")
}

// applyFilter translates the derived-status rules into predicates as of filter.Today
func (r *GormInstallmentRepository) applyFilter(query *gorm.DB, filter collections.InstallmentFilter) *gorm.DB {
	if filter.SaleID != nil {
		query = query.Where("venta_id = ?", *filter.SaleID)
	}

	today := collections.DateOf(filter.Today).Format(sqlDate)
	if filter.OverdueOnly {
		query = query.Where("monto_pagado < monto_cuota AND fecha_vencimiento < ?", today)
	}
	if filter.Status != nil {
		switch *filter.Status {
		case collections.InstallmentStatusPaid:
			query = query.Where("monto_pagado >= monto_cuota")
		case collections.InstallmentStatusOverdue:
			query = query.Where("monto_pagado < monto_cuota AND fecha_vencimiento < ?", today)
		case collections.InstallmentStatusPartial:
			query = query.Where("monto_pagado > 0 AND monto_pagado < monto_cuota AND fecha_vencimiento >= ?", today)
		case collections.InstallmentStatusPending:
			query = query.Where("monto_pagado = 0 AND monto_cuota > 0 AND fecha_vencimiento >= ?", today)
		}
	}
	return query
}

func installmentsToDomain(rows []models.InstallmentModel) []*collections.Installment {
	out := make([]*collections.Installment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// translateWriteError maps unique violations to ErrAlreadyExists and check
// constraint violations to ErrInvalidInput
func translateWriteError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "Record already exists")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Values rejected by a table constraint")
	}
	return err
}

var _ collections.InstallmentRepository = (*GormInstallmentRepository)(nil)
