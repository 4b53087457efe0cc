package persistence

import (
	"context"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcollections.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) InstallmentRepo() collections.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentRepo() collections.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) AlertRepo() collections.AlertRepository {
	return NewGormAlertRepository(r.tx)
}

var (
	_ appcollections.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcollections.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
