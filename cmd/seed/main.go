// Command seed fills a development database with financed sales, their
// installment schedules, a payment history and the resulting alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/motoshop/backend/internal/infrastructure/logger"
	"github.com/motoshop/backend/internal/infrastructure/migration"
	"github.com/motoshop/backend/internal/infrastructure/persistence"
	"github.com/motoshop/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

func main() {
	var (
		sales   = flag.Int("sales", 25, "Number of financed sales to create")
		seedVal = flag.Uint64("seed", 0, "Random seed (0 picks one)")
		migrate = flag.Bool("migrate", true, "Apply embedded migrations before seeding")
	)
	flag.Parse()

	if *sales <= 0 {
		fmt.Fprintln(os.Stderr, "-sales must be positive")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log, *sales, *seedVal, *migrate); err != nil {
		log.Error("Seed failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, sales int, seedVal uint64, applyMigrations bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: "warn",
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if applyMigrations {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		m, err := migration.New(sqlDB, "", log)
		if err != nil {
			return fmt.Errorf("init migrator: %w", err)
		}
		if err := m.Up(); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	saleRepo := persistence.NewGormFinancedSaleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	clock := appcollections.SystemClock{Location: cfg.App.Location()}
	settings := appcollections.DefaultSettings()
	services := seed.Services{
		Installments: appcollections.NewInstallmentService(installmentRepo, saleRepo, txScope, clock, settings, log),
		Alerts:       appcollections.NewAlertService(alertRepo, installmentRepo, txScope, clock, settings, log),
	}

	log.Info("Seeding database",
		zap.Int("sales", sales),
		zap.Uint64("seed", seedVal),
		zap.String("database", cfg.Database.DBName),
	)
	today := collections.DateOf(clock.Now())
	_, err = seed.NewSeeder(db.DB, services, seed.NewGenerator(seedVal), log).Run(ctx, sales, today)
	return err
}
