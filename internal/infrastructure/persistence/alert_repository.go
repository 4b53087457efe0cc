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

// GormAlertRepository implements collections.AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.Alert, error) {
	var model models.AlertModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists alerts page by page, newest first unless ordered otherwise
func (r *GormAlertRepository) FindAll(ctx context.Context, filter collections.AlertFilter) ([]*collections.Alert, error) {
	page := filter.Filter.Normalized()
	field := ValidateSortField(filter.OrderBy, AlertSortFields, "created_at")

	var rows []models.AlertModel
	if err := r.applyFilter(r.db.WithContext(ctx), filter).
		Order(field + " " + ValidateSortOrder(page.OrderDir)).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return alertsToDomain(rows), nil
}

// Count counts alerts matching the filter
func (r *GormAlertRepository) Count(ctx context.Context, filter collections.AlertFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.AlertModel{}), filter).Count(&count).Error
	return count, err
}

// FindActive returns all alerts in estado activa
func (r *GormAlertRepository) FindActive(ctx context.Context) ([]*collections.Alert, error) {
	var rows []models.AlertModel
	if err := r.db.WithContext(ctx).
		Where("estado = ?", collections.AlertStatusActive).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return alertsToDomain(rows), nil
}

// Save inserts a new alert or updates an existing one with optimistic locking
func (r *GormAlertRepository) Save(ctx context.Context, alert *collections.Alert) error {
	if alert.IsNew() {
		if err := r.db.WithContext(ctx).Create(models.AlertModelFromDomain(alert)).Error; err != nil {
			return translateWriteError(err)
		}
		alert.MarkPersisted()
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("id = ? AND version = ?", alert.ID, alert.PersistedVersion()).
		Updates(map[string]any{
			"estado":           alert.Status,
			"mensaje":          alert.Message,
			"fecha_lectura":    alert.ReadAt,
			"fecha_resolucion": alert.ResolvedAt,
			"version":          alert.Version,
			"updated_at":       alert.UpdatedAt,
		})
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.AlertModel{}).Where("id = ?", alert.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Alert was modified by another request")
	}
	alert.MarkPersisted()
	return nil
}

func (r *GormAlertRepository) applyFilter(query *gorm.DB, filter collections.AlertFilter) *gorm.DB {
	if filter.SaleID != nil {
		query = query.Where("venta_id = ?", *filter.SaleID)
	}
	// activas_solo and estado combine, so conflicting values match nothing
	if filter.ActiveOnly {
		query = query.Where("estado = ?", collections.AlertStatusActive)
	}
	if filter.Status != nil {
		query = query.Where("estado = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("tipo_alerta = ?", *filter.Type)
	}
	return query
}

func alertsToDomain(rows []models.AlertModel) []*collections.Alert {
	out := make([]*collections.Alert, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ collections.AlertRepository = (*GormAlertRepository)(nil)
