package seed

import (
	"context"
	"fmt"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services are the use cases the seeder drives
type Services struct {
	Installments *appcollections.InstallmentService
	Alerts       *appcollections.AlertService
}

// Result counts what Run wrote
type Result struct {
	Sales        int
	Installments int
	Payments     int
	Alerts       int
}

// Seeder writes generated data through the collections services
type Seeder struct {
	db        *gorm.DB
	services  Services
	generator *Generator
	logger    *zap.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(db *gorm.DB, services Services, generator *Generator, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, services: services, generator: generator, logger: logger}
}

// Run inserts sales financed sales, generates their schedules, records the
// planned payments and finishes with an alert scan
func (s *Seeder) Run(ctx context.Context, sales int, today time.Time) (*Result, error) {
	res := &Result{}
	for i := 0; i < sales; i++ {
		sale := s.generator.Sale(today)
		if err := s.db.WithContext(ctx).Create(models.FinancedSaleModelFromDomain(sale)).Error; err != nil {
			return res, fmt.Errorf("insert sale: %w", err)
		}
		res.Sales++

		schedule, err := s.services.Installments.GenerateSchedule(ctx, sale.ID)
		if err != nil {
			return res, fmt.Errorf("generate schedule for sale %s: %w", sale.ID, err)
		}
		res.Installments += len(schedule.Installments)

		for _, inst := range schedule.Installments {
			due, err := time.ParseInLocation(appcollections.DateLayout, inst.DueDate, today.Location())
			if err != nil {
				return res, err
			}
			plan, ok := s.generator.Payment(inst.Amount, due, today)
			if !ok {
				continue
			}
			paidAt := plan.PaidAt
			if _, err := s.services.Installments.RecordPayment(ctx, inst.ID, appcollections.RecordPaymentRequest{
				Amount:    plan.Amount,
				PaidAt:    &paidAt,
				Method:    string(plan.Method),
				Reference: plan.Reference,
			}); err != nil {
				return res, fmt.Errorf("record payment for installment %s: %w", inst.ID, err)
			}
			res.Payments++
		}
	}

	scan, err := s.services.Alerts.ScanAlerts(ctx)
	if err != nil {
		return res, fmt.Errorf("alert scan: %w", err)
	}
	res.Alerts = scan.Created

	s.logger.Info("Seed completed",
		zap.Int("sales", res.Sales),
		zap.Int("installments", res.Installments),
		zap.Int("payments", res.Payments),
		zap.Int("alerts", res.Alerts),
	)
	return res, nil
}
