package collections

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockInstallmentRepository is a mock implementation of collections.InstallmentRepository
type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collections.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindAll(ctx context.Context, filter collections.InstallmentFilter) ([]*collections.Installment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) Count(ctx context.Context, filter collections.InstallmentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInstallmentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*collections.Installment, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindBySales(ctx context.Context, saleIDs []uuid.UUID) ([]*collections.Installment, error) {
	args := m.Called(ctx, saleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindOpen(ctx context.Context) ([]*collections.Installment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) ExistsForSale(ctx context.Context, saleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, saleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) Save(ctx context.Context, installment *collections.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, installments []*collections.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

// MockAlertRepository is a mock implementation of collections.AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collections.Alert), args.Error(1)
}

func (m *MockAlertRepository) FindAll(ctx context.Context, filter collections.AlertFilter) ([]*collections.Alert, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Alert), args.Error(1)
}

func (m *MockAlertRepository) Count(ctx context.Context, filter collections.AlertFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertRepository) FindActive(ctx context.Context) ([]*collections.Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Alert), args.Error(1)
}

func (m *MockAlertRepository) Save(ctx context.Context, alert *collections.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// MockFinancedSaleRepository is a mock implementation of collections.FinancedSaleRepository
type MockFinancedSaleRepository struct {
	mock.Mock
}

func (m *MockFinancedSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.FinancedSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collections.FinancedSale), args.Error(1)
}

func (m *MockFinancedSaleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*collections.FinancedSale, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.FinancedSale), args.Error(1)
}

func (m *MockFinancedSaleRepository) Search(ctx context.Context, query string, limit int) ([]*collections.FinancedSale, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.FinancedSale), args.Error(1)
}

// MockPaymentRepository is a mock implementation of collections.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *collections.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*collections.Payment, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindBySales(ctx context.Context, saleIDs []uuid.UUID) ([]*collections.Payment, error) {
	args := m.Called(ctx, saleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collections.Payment), args.Error(1)
}

// MockSummaryCache is a mock implementation of SummaryCache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, cutoff time.Time) (*collections.CollectionSummary, bool, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*collections.CollectionSummary), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSummaryCache) Set(ctx context.Context, summary collections.CollectionSummary, generation int64, ttl time.Duration) error {
	args := m.Called(ctx, summary, generation, ttl)
	return args.Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
