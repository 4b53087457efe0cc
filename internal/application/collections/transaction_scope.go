package collections

import (
	"context"

	"github.com/motoshop/backend/internal/domain/collections"
)

// TransactionScope runs a unit of work atomically
type TransactionScope interface {
	// Execute runs fn in a database transaction, rolling back when fn returns an error
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the writable repositories bound to one transaction.
// A payment writes the installment and the ledger entry together; an alert scan
// writes every created or refreshed alert together.
type TransactionalRepositories interface {
	InstallmentRepo() collections.InstallmentRepository
	PaymentRepo() collections.PaymentRepository
	AlertRepo() collections.AlertRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Tests use it with mocks.
type NoOpTransactionScope struct {
	installmentRepo collections.InstallmentRepository
	paymentRepo     collections.PaymentRepository
	alertRepo       collections.AlertRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	installmentRepo collections.InstallmentRepository,
	paymentRepo collections.PaymentRepository,
	alertRepo collections.AlertRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		alertRepo:       alertRepo,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) InstallmentRepo() collections.InstallmentRepository {
	return s.installmentRepo
}

func (s *NoOpTransactionScope) PaymentRepo() collections.PaymentRepository {
	return s.paymentRepo
}

func (s *NoOpTransactionScope) AlertRepo() collections.AlertRepository {
	return s.alertRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
