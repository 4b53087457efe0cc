package handler

import (
	"context"

	"github.com/google/uuid"
	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/stretchr/testify/mock"
)

type mockInstallmentService struct {
	mock.Mock
}

func (m *mockInstallmentService) List(ctx context.Context, q appcollections.ListInstallmentsQuery) ([]appcollections.InstallmentResponse, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]appcollections.InstallmentResponse)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockInstallmentService) Get(ctx context.Context, id uuid.UUID) (*appcollections.InstallmentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*appcollections.InstallmentResponse)
	return resp, args.Error(1)
}

func (m *mockInstallmentService) Update(ctx context.Context, id uuid.UUID, req appcollections.UpdateInstallmentRequest) (*appcollections.InstallmentResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*appcollections.InstallmentResponse)
	return resp, args.Error(1)
}

func (m *mockInstallmentService) RecordPayment(ctx context.Context, id uuid.UUID, req appcollections.RecordPaymentRequest) (*appcollections.RecordPaymentResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*appcollections.RecordPaymentResponse)
	return resp, args.Error(1)
}

func (m *mockInstallmentService) GenerateSchedule(ctx context.Context, saleID uuid.UUID) (*appcollections.ScheduleResponse, error) {
	args := m.Called(ctx, saleID)
	resp, _ := args.Get(0).(*appcollections.ScheduleResponse)
	return resp, args.Error(1)
}

type mockAlertService struct {
	mock.Mock
}

func (m *mockAlertService) List(ctx context.Context, q appcollections.ListAlertsQuery) ([]appcollections.AlertResponse, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]appcollections.AlertResponse)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockAlertService) MarkRead(ctx context.Context, id uuid.UUID) (*appcollections.AlertResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*appcollections.AlertResponse)
	return resp, args.Error(1)
}

func (m *mockAlertService) MarkResolved(ctx context.Context, id uuid.UUID) (*appcollections.AlertResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*appcollections.AlertResponse)
	return resp, args.Error(1)
}

func (m *mockAlertService) ScanAlerts(ctx context.Context) (*appcollections.ScanResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*appcollections.ScanResponse)
	return resp, args.Error(1)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) Summary(ctx context.Context) (*appcollections.SummaryResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*appcollections.SummaryResponse)
	return resp, args.Error(1)
}

func (m *mockReportService) ClientStandings(ctx context.Context, q appcollections.StandingsQuery) ([]appcollections.ClientStandingResponse, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]appcollections.ClientStandingResponse)
	return items, args.Error(1)
}

func (m *mockReportService) TopAtRisk(ctx context.Context, n int) ([]appcollections.ClientStandingResponse, error) {
	args := m.Called(ctx, n)
	items, _ := args.Get(0).([]appcollections.ClientStandingResponse)
	return items, args.Error(1)
}

func (m *mockReportService) ExportStandings(ctx context.Context, q appcollections.StandingsQuery) (*appcollections.ExportFile, error) {
	args := m.Called(ctx, q)
	file, _ := args.Get(0).(*appcollections.ExportFile)
	return file, args.Error(1)
}
