package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/motoshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFinancedSaleRepository reads the ventas_financiadas read model
type GormFinancedSaleRepository struct {
	db *gorm.DB
}

// NewGormFinancedSaleRepository creates a new GormFinancedSaleRepository
func NewGormFinancedSaleRepository(db *gorm.DB) *GormFinancedSaleRepository {
	return &GormFinancedSaleRepository{db: db}
}

// FindByID finds a financed sale by ID
func (r *GormFinancedSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.FinancedSale, error) {
	var model models.FinancedSaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the sales with the given IDs
func (r *GormFinancedSaleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*collections.FinancedSale, error) {
	if len(ids) == 0 {
		return []*collections.FinancedSale{}, nil
	}
	var rows []models.FinancedSaleModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return salesToDomain(rows), nil
}

// Search matches the client name (case-insensitive) or document prefix
func (r *GormFinancedSaleRepository) Search(ctx context.Context, query string, limit int) ([]*collections.FinancedSale, error) {
	q := r.db.WithContext(ctx).Model(&models.FinancedSaleModel{})
	if term := strings.TrimSpace(query); term != "" {
		q = q.Where("LOWER(cliente_nombre) LIKE ? OR cliente_documento LIKE ?",
			"%"+escapeLike(strings.ToLower(term))+"%", escapeLike(term)+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.FinancedSaleModel
	if err := q.Order("cliente_nombre ASC").Order("fecha_venta ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return salesToDomain(rows), nil
}

func salesToDomain(rows []models.FinancedSaleModel) []*collections.FinancedSale {
	out := make([]*collections.FinancedSale, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike keeps user input from acting as LIKE wildcards
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ collections.FinancedSaleRepository = (*GormFinancedSaleRepository)(nil)
