package handler

import (
	"context"

	"github.com/google/uuid"
	appcollections "github.com/motoshop/backend/internal/application/collections"
)

// InstallmentUseCases is the cuotas surface the handlers depend on
type InstallmentUseCases interface {
	List(ctx context.Context, q appcollections.ListInstallmentsQuery) ([]appcollections.InstallmentResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*appcollections.InstallmentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req appcollections.UpdateInstallmentRequest) (*appcollections.InstallmentResponse, error)
	RecordPayment(ctx context.Context, id uuid.UUID, req appcollections.RecordPaymentRequest) (*appcollections.RecordPaymentResponse, error)
	GenerateSchedule(ctx context.Context, saleID uuid.UUID) (*appcollections.ScheduleResponse, error)
}

// AlertUseCases is the alertas surface the handlers depend on
type AlertUseCases interface {
	List(ctx context.Context, q appcollections.ListAlertsQuery) ([]appcollections.AlertResponse, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*appcollections.AlertResponse, error)
	MarkResolved(ctx context.Context, id uuid.UUID) (*appcollections.AlertResponse, error)
	ScanAlerts(ctx context.Context) (*appcollections.ScanResponse, error)
}

// ReportUseCases is the reporting surface the handlers depend on
type ReportUseCases interface {
	Summary(ctx context.Context) (*appcollections.SummaryResponse, error)
	ClientStandings(ctx context.Context, q appcollections.StandingsQuery) ([]appcollections.ClientStandingResponse, error)
	TopAtRisk(ctx context.Context, n int) ([]appcollections.ClientStandingResponse, error)
	ExportStandings(ctx context.Context, q appcollections.StandingsQuery) (*appcollections.ExportFile, error)
}

var (
	_ InstallmentUseCases = (*appcollections.InstallmentService)(nil)
	_ AlertUseCases       = (*appcollections.AlertService)(nil)
	_ ReportUseCases      = (*appcollections.ReportService)(nil)
)
