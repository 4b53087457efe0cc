package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InstallmentService handles cuota queries, edits, payments and schedule generation
type InstallmentService struct {
	installmentRepo collections.InstallmentRepository
	saleRepo        collections.FinancedSaleRepository
	txScope         TransactionScope
	clock           Clock
	settings        Settings
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	installmentRepo collections.InstallmentRepository,
	saleRepo collections.FinancedSaleRepository,
	txScope TransactionScope,
	clock Clock,
	settings Settings,
	logger *zap.Logger,
) *InstallmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallmentService{
		installmentRepo: installmentRepo,
		saleRepo:        saleRepo,
		txScope:         txScope,
		clock:           clock,
		settings:        settings,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InstallmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InstallmentService) today() time.Time {
	return collections.DateOf(s.clock.Now())
}

// List returns a page of installments classified as of today, and the total count
func (s *InstallmentService) List(ctx context.Context, q ListInstallmentsQuery) ([]InstallmentResponse, int64, error) {
	today := s.today()
	filter := collections.InstallmentFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		},
		OverdueOnly: q.Overdue,
		Today:       today,
	}
	if q.SaleID != "" {
		saleID, err := uuid.Parse(q.SaleID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid sale ID")
		}
		filter.SaleID = &saleID
	}
	if q.Status != "" {
		status := collections.InstallmentStatus(q.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Invalid installment status: %s", q.Status))
		}
		filter.Status = &status
	}

	installments, err := s.installmentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.installmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]InstallmentResponse, len(installments))
	for i, inst := range installments {
		c, err := inst.Classify(today)
		if err != nil {
			return nil, 0, err
		}
		items[i] = ToInstallmentResponse(inst, c)
	}
	return items, total, nil
}

// Get returns one installment classified as of today
func (s *InstallmentService) Get(ctx context.Context, id uuid.UUID) (*InstallmentResponse, error) {
	inst, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(inst, s.today())
}

// Update applies a partial update (PATCH) to an installment
func (s *InstallmentService) Update(ctx context.Context, id uuid.UUID, req UpdateInstallmentRequest) (*InstallmentResponse, error) {
	now := s.clock.Now()
	today := collections.DateOf(now)

	patch := collections.InstallmentPatch{
		Amount:     req.Amount,
		PaidAmount: req.PaidAmount,
		LateFee:    req.LateFee,
	}
	if req.DueDate != nil {
		due, err := time.ParseInLocation(DateLayout, *req.DueDate, now.Location())
		if err != nil {
			return nil, shared.NewDomainError(collections.ErrInvalidDate.Code, fmt.Sprintf("Invalid due date: %s", *req.DueDate))
		}
		patch.DueDate = &due
	}

	inst, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inst.Update(patch, today); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.Save(ctx, inst); err != nil {
		return nil, err
	}

	s.logger.Info("Installment updated",
		zap.String("installment_id", inst.ID.String()),
		zap.String("sale_id", inst.SaleID.String()),
		zap.Int("version", inst.Version),
	)
	s.publishDomainEvents(ctx, inst)
	return s.respond(inst, today)
}

// RecordPayment applies a payment to an installment and appends it to the
// ledger in one transaction. Mora is accrued up to the payment date first.
func (s *InstallmentService) RecordPayment(ctx context.Context, id uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	now := s.clock.Now()
	paidAt := now
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		paidAt = req.PaidAt.In(now.Location())
	}

	var (
		inst    *collections.Installment
		payment *collections.Payment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inst, err = repos.InstallmentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := inst.AccrueLateFee(s.settings.LateFee, paidAt); err != nil {
			return err
		}
		if err := inst.ApplyPayment(req.Amount, paidAt); err != nil {
			return err
		}
		payment, err = collections.NewPayment(inst, req.Amount, paidAt, collections.PaymentMethod(req.Method), req.Reference)
		if err != nil {
			return err
		}
		if err := repos.InstallmentRepo().Save(ctx, inst); err != nil {
			return err
		}
		return repos.PaymentRepo().Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("installment_id", inst.ID.String()),
		zap.String("sale_id", inst.SaleID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("status", string(inst.Status)),
	)
	s.publishDomainEvents(ctx, inst)

	resp, err := s.respond(inst, collections.DateOf(now))
	if err != nil {
		return nil, err
	}
	return &RecordPaymentResponse{
		Payment:     ToPaymentResponse(payment),
		Installment: *resp,
	}, nil
}

// GenerateSchedule creates the installment schedule of a financed sale
func (s *InstallmentService) GenerateSchedule(ctx context.Context, saleID uuid.UUID) (*ScheduleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	exists, err := s.installmentRepo.ExistsForSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, scheduleExists(saleID)
	}

	schedule, err := collections.GenerateSchedule(sale)
	if err != nil {
		return nil, err
	}
	if err := s.installmentRepo.CreateBatch(ctx, schedule); err != nil {
		// a concurrent request won the unique (venta_id, numero_cuota) index
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, scheduleExists(saleID)
		}
		return nil, err
	}

	s.logger.Info("Installment schedule generated",
		zap.String("sale_id", saleID.String()),
		zap.Int("installments", len(schedule)),
	)
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, collections.NewScheduleGeneratedEvent(saleID, schedule))
	}

	today := s.today()
	resp := &ScheduleResponse{SaleID: saleID, Installments: make([]InstallmentResponse, len(schedule))}
	for i, inst := range schedule {
		c, err := inst.Classify(today)
		if err != nil {
			return nil, err
		}
		resp.Installments[i] = ToInstallmentResponse(inst, c)
	}
	return resp, nil
}

func (s *InstallmentService) respond(inst *collections.Installment, today time.Time) (*InstallmentResponse, error) {
	c, err := inst.Classify(today)
	if err != nil {
		return nil, err
	}
	resp := ToInstallmentResponse(inst, c)
	return &resp, nil
}

// publishDomainEvents publishes and clears the installment's pending events
func (s *InstallmentService) publishDomainEvents(ctx context.Context, inst *collections.Installment) {
	if s.eventPublisher == nil {
		return
	}
	events := inst.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	inst.ClearDomainEvents()
}

func scheduleExists(saleID uuid.UUID) error {
	return shared.NewDomainError(collections.ErrScheduleExists.Code, fmt.Sprintf("Sale %s already has an installment schedule", saleID))
}
