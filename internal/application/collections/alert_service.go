package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertService lists alerts, runs the alert scan and applies user transitions
type AlertService struct {
	alertRepo       collections.AlertRepository
	installmentRepo collections.InstallmentRepository
	txScope         TransactionScope
	generator       *collections.AlertGenerator
	clock           Clock
	settings        Settings
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(
	alertRepo collections.AlertRepository,
	installmentRepo collections.InstallmentRepository,
	txScope TransactionScope,
	clock Clock,
	settings Settings,
	logger *zap.Logger,
) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		alertRepo:       alertRepo,
		installmentRepo: installmentRepo,
		txScope:         txScope,
		generator:       collections.NewAlertGenerator(settings.HorizonDays),
		clock:           clock,
		settings:        settings,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AlertService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns a page of alerts and the total count
func (s *AlertService) List(ctx context.Context, q ListAlertsQuery) ([]AlertResponse, int64, error) {
	filter := collections.AlertFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		},
		ActiveOnly: q.ActiveOnly,
	}
	if q.SaleID != "" {
		saleID, err := uuid.Parse(q.SaleID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid sale ID")
		}
		filter.SaleID = &saleID
	}
	if q.Status != "" {
		status := collections.AlertStatus(q.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Invalid alert status: %s", q.Status))
		}
		filter.Status = &status
	}
	if q.Type != "" {
		alertType := collections.AlertType(q.Type)
		if !alertType.IsValid() {
			return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Invalid alert type: %s", q.Type))
		}
		filter.Type = &alertType
	}

	alerts, err := s.alertRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.alertRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToAlertResponses(alerts), total, nil
}

// MarkRead moves an alert to leida
func (s *AlertService) MarkRead(ctx context.Context, id uuid.UUID) (*AlertResponse, error) {
	return s.transition(ctx, id, (*collections.Alert).MarkRead)
}

// MarkResolved moves an alert to resuelta
func (s *AlertService) MarkResolved(ctx context.Context, id uuid.UUID) (*AlertResponse, error) {
	return s.transition(ctx, id, (*collections.Alert).MarkResolved)
}

func (s *AlertService) transition(ctx context.Context, id uuid.UUID, apply func(*collections.Alert, time.Time) error) (*AlertResponse, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := alert.Version
	if err := apply(alert, s.clock.Now()); err != nil {
		return nil, err
	}
	if alert.Version != before {
		if err := s.alertRepo.Save(ctx, alert); err != nil {
			return nil, err
		}
		s.logger.Info("Alert status changed",
			zap.String("alert_id", alert.ID.String()),
			zap.String("status", string(alert.Status)),
		)
		s.publishDomainEvents(ctx, alert)
	}
	resp := ToAlertResponse(alert)
	return &resp, nil
}

// ScanAlerts refreshes stored installment state, accrues mora and raises the
// alerts the current snapshot calls for. Everything the scan writes commits
// together; a concurrent edit aborts the run and the next scan picks it up.
func (s *AlertService) ScanAlerts(ctx context.Context) (*ScanResponse, error) {
	now := s.clock.Now()
	today := collections.DateOf(now)

	open, err := s.installmentRepo.FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open installments: %w", err)
	}
	active, err := s.alertRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active alerts: %w", err)
	}

	var changed []*collections.Installment
	for _, inst := range open {
		refreshed, err := inst.Refresh(today)
		if err != nil {
			s.logger.Error("Installment cannot be classified",
				zap.String("installment_id", inst.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		accrued, err := inst.AccrueLateFee(s.settings.LateFee, today)
		if err != nil {
			return nil, err
		}
		if refreshed || accrued {
			changed = append(changed, inst)
		}
	}

	result, err := s.generator.Generate(collections.GroupBySale(open), active, today)
	if err != nil {
		return nil, err
	}
	alerts := result.All()

	if len(changed) > 0 || len(alerts) > 0 {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			for _, inst := range changed {
				if err := repos.InstallmentRepo().Save(ctx, inst); err != nil {
					return fmt.Errorf("save installment %s: %w", inst.ID, err)
				}
			}
			for _, alert := range alerts {
				if err := repos.AlertRepo().Save(ctx, alert); err != nil {
					return fmt.Errorf("save alert %s: %w", alert.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, alert := range result.Created {
		s.publishDomainEvents(ctx, alert)
	}

	s.logger.Info("Alert scan completed",
		zap.Int("open_installments", len(open)),
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("installments_updated", len(changed)),
	)

	return &ScanResponse{
		Created:             len(result.Created),
		Updated:             len(result.Updated),
		InstallmentsUpdated: len(changed),
		Alerts:              ToAlertResponses(alerts),
		CutoffDate:          today.Format(DateLayout),
	}, nil
}

// publishDomainEvents publishes and clears the alert's pending events
func (s *AlertService) publishDomainEvents(ctx context.Context, alert *collections.Alert) {
	if s.eventPublisher == nil {
		return
	}
	events := alert.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	alert.ClearDomainEvents()
}
