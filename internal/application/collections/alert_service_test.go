package collections

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type alertServiceFixture struct {
	service   *AlertService
	alerts    *MockAlertRepository
	insts     *MockInstallmentRepository
	payments  *MockPaymentRepository
	publisher *MockEventPublisher
	ctx       context.Context
}

func newAlertServiceFixture(settings Settings) *alertServiceFixture {
	f := &alertServiceFixture{
		alerts:    new(MockAlertRepository),
		insts:     new(MockInstallmentRepository),
		payments:  new(MockPaymentRepository),
		publisher: NewMockEventPublisher(),
		ctx:       context.Background(),
	}
	scope := NewNoOpTransactionScope(f.insts, f.payments, f.alerts)
	f.service = NewAlertService(f.alerts, f.insts, scope, FixedClock{At: testToday}, settings, nil)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func storedAlert(t *testing.T, saleID uuid.UUID, installmentID *uuid.UUID, alertType collections.AlertType) *collections.Alert {
	t.Helper()
	a, err := collections.NewAlert(saleID, installmentID, alertType, "mensaje", day(2024, 1, 10))
	require.NoError(t, err)
	a.ClearDomainEvents()
	a.MarkPersisted()
	return a
}

func TestAlertService_List(t *testing.T) {
	f := newAlertServiceFixture(DefaultSettings())
	saleID := uuid.New()
	alert := storedAlert(t, saleID, nil, collections.AlertTypeMultipleOverdue)

	f.alerts.On("FindAll", f.ctx, mock.MatchedBy(func(filter collections.AlertFilter) bool {
		return filter.ActiveOnly && filter.Type != nil && *filter.Type == collections.AlertTypeMultipleOverdue &&
			filter.Status == nil && filter.SaleID == nil
	})).Return([]*collections.Alert{alert}, nil)
	f.alerts.On("Count", f.ctx, mock.Anything).Return(int64(1), nil)

	items, total, err := f.service.List(f.ctx, ListAlertsQuery{ActiveOnly: true, Type: "multiple_vencidas"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "multiple_vencidas", items[0].Type)
	assert.Equal(t, "activa", items[0].Status)
	assert.Nil(t, items[0].InstallmentID)
}

func TestAlertService_List_InvalidFilters(t *testing.T) {
	f := newAlertServiceFixture(DefaultSettings())

	_, _, err := f.service.List(f.ctx, ListAlertsQuery{Status: "archivada"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, _, err = f.service.List(f.ctx, ListAlertsQuery{Type: "morosa"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, _, err = f.service.List(f.ctx, ListAlertsQuery{SaleID: "42"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAlertService_Transitions(t *testing.T) {
	t.Run("read then resolve then resolve again", func(t *testing.T) {
		f := newAlertServiceFixture(DefaultSettings())
		instID := uuid.New()
		alert := storedAlert(t, uuid.New(), &instID, collections.AlertTypeOverdue)
		f.alerts.On("FindByID", f.ctx, alert.ID).Return(alert, nil)
		f.alerts.On("Save", f.ctx, alert).Return(nil)

		read, err := f.service.MarkRead(f.ctx, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, "leida", read.Status)
		require.NotNil(t, read.ReadAt)
		assert.Equal(t, testToday, *read.ReadAt)

		resolved, err := f.service.MarkResolved(f.ctx, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, "resuelta", resolved.Status)
		assert.NotNil(t, resolved.ResolvedAt)

		_, err = f.service.MarkResolved(f.ctx, alert.ID)
		assert.ErrorIs(t, err, collections.ErrInvalidTransition)

		f.alerts.AssertNumberOfCalls(t, "Save", 2)
		assert.Len(t, f.publisher.GetEventsByType(collections.EventTypeAlertStatusChanged), 2)
	})

	t.Run("reading a read alert writes nothing", func(t *testing.T) {
		f := newAlertServiceFixture(DefaultSettings())
		instID := uuid.New()
		alert := storedAlert(t, uuid.New(), &instID, collections.AlertTypeUpcoming)
		require.NoError(t, alert.MarkRead(testToday))
		alert.ClearDomainEvents()
		alert.MarkPersisted()
		f.alerts.On("FindByID", f.ctx, alert.ID).Return(alert, nil)

		resp, err := f.service.MarkRead(f.ctx, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, "leida", resp.Status)
		f.alerts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown alert", func(t *testing.T) {
		f := newAlertServiceFixture(DefaultSettings())
		id := uuid.New()
		f.alerts.On("FindByID", f.ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.MarkResolved(f.ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAlertService_ScanAlerts(t *testing.T) {
	t.Run("raises alerts and refreshes stale installments", func(t *testing.T) {
		settings := DefaultSettings()
		settings.LateFee = collections.LateFeePolicy{DailyRate: decimal.RequireFromString("0.001")}
		f := newAlertServiceFixture(settings)

		saleA := uuid.New()
		saleB := uuid.New()
		a1 := storedInstallment(t, saleA, 1, 500000, 0, day(2023, 12, 1))
		a2 := storedInstallment(t, saleA, 2, 500000, 0, day(2024, 1, 1))
		b1 := storedInstallment(t, saleB, 1, 300000, 0, day(2024, 1, 18))

		f.insts.On("FindOpen", f.ctx).Return([]*collections.Installment{a1, a2, b1}, nil)
		f.alerts.On("FindActive", f.ctx).Return([]*collections.Alert{}, nil)
		f.insts.On("Save", f.ctx, mock.Anything).Return(nil)
		f.alerts.On("Save", f.ctx, mock.Anything).Return(nil)

		resp, err := f.service.ScanAlerts(f.ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Created)
		assert.Equal(t, 0, resp.Updated)
		// a1 and a2 flip to vencida and accrue mora; b1 stays pendiente
		assert.Equal(t, 2, resp.InstallmentsUpdated)
		assert.Equal(t, "2024-01-15", resp.CutoffDate)

		types := map[string]int{}
		for _, a := range resp.Alerts {
			types[a.Type]++
		}
		assert.Equal(t, map[string]int{"multiple_vencidas": 1, "proximo_vencer": 1}, types)

		assert.Equal(t, collections.InstallmentStatusOverdue, a1.Status)
		assert.True(t, a1.LateFee.IsPositive())
		f.insts.AssertNumberOfCalls(t, "Save", 2)
		f.alerts.AssertNumberOfCalls(t, "Save", 2)
		assert.Len(t, f.publisher.GetEventsByType(collections.EventTypeAlertRaised), 2)
	})

	t.Run("second scan over the same snapshot writes nothing", func(t *testing.T) {
		f := newAlertServiceFixture(DefaultSettings())
		saleID := uuid.New()
		inst := storedInstallment(t, saleID, 1, 500000, 0, day(2024, 1, 1))
		inst.Status = collections.InstallmentStatusOverdue
		existing := storedAlert(t, saleID, &inst.ID, collections.AlertTypeOverdue)

		f.insts.On("FindOpen", f.ctx).Return([]*collections.Installment{inst}, nil)
		f.alerts.On("FindActive", f.ctx).Return([]*collections.Alert{existing}, nil)

		resp, err := f.service.ScanAlerts(f.ctx)
		require.NoError(t, err)

		assert.Zero(t, resp.Created)
		assert.Zero(t, resp.InstallmentsUpdated)
		assert.Empty(t, resp.Alerts)
		f.insts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.alerts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("write failure aborts without publishing", func(t *testing.T) {
		f := newAlertServiceFixture(DefaultSettings())
		saleID := uuid.New()
		inst := storedInstallment(t, saleID, 1, 500000, 0, day(2024, 1, 1))
		inst.Status = collections.InstallmentStatusOverdue

		f.insts.On("FindOpen", f.ctx).Return([]*collections.Installment{inst}, nil)
		f.alerts.On("FindActive", f.ctx).Return([]*collections.Alert{}, nil)
		f.alerts.On("Save", f.ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.service.ScanAlerts(f.ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Empty(t, f.publisher.GetEventsByType(collections.EventTypeAlertRaised))
	})

	t.Run("load failure", func(t *testing.T) {
		f := newAlertServiceFixture(DefaultSettings())
		f.insts.On("FindOpen", f.ctx).Return(nil, errors.New("timeout"))

		_, err := f.service.ScanAlerts(f.ctx)
		assert.ErrorContains(t, err, "load open installments")
	})
}
