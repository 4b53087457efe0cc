package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/motoshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AlertScanner runs one alert scan
type AlertScanner interface {
	ScanAlerts(ctx context.Context) (*appcollections.ScanResponse, error)
}

// ScanObserver is told about every scan the trigger runs
type ScanObserver interface {
	ObserveScan(ctx context.Context, elapsed time.Duration, result *appcollections.ScanResponse, err error)
}

// AlertScanTriggerConfig holds configuration for the alert scan trigger
type AlertScanTriggerConfig struct {
	Enabled bool

	// Interval is how often a scan is attempted; it is also the claim bucket size
	Interval time.Duration

	// LockTTL is how long a claimed bucket stays claimed
	LockTTL time.Duration

	// JobTimeout bounds a single scan
	JobTimeout time.Duration
}

// DefaultAlertScanTriggerConfig returns default configuration
func DefaultAlertScanTriggerConfig() AlertScanTriggerConfig {
	return AlertScanTriggerConfig{
		Enabled:    false,
		Interval:   time.Hour,
		LockTTL:    time.Hour,
		JobTimeout: 5 * time.Minute,
	}
}

// ConfigFromSettings maps the scheduler section of the app config
func ConfigFromSettings(cfg config.SchedulerConfig) AlertScanTriggerConfig {
	return AlertScanTriggerConfig{
		Enabled:    cfg.Enabled,
		Interval:   cfg.AlertScanInterval,
		LockTTL:    cfg.ScanLockTTL,
		JobTimeout: cfg.JobTimeout,
	}
}

// Validate checks the configuration
func (c AlertScanTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%w: lock ttl must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// AlertScanTrigger runs the alert scan on a ticker. Each tick claims a
// time bucket in the IdempotencyStore so that replicas sharing a store do
// not scan the same interval twice.
type AlertScanTrigger struct {
	config   AlertScanTriggerConfig
	scanner  AlertScanner
	claims   shared.IdempotencyStore
	observer ScanObserver
	logger   *zap.Logger
	now      func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
}

// NewAlertScanTrigger creates a new alert scan trigger
func NewAlertScanTrigger(
	cfg AlertScanTriggerConfig,
	scanner AlertScanner,
	claims shared.IdempotencyStore,
	logger *zap.Logger,
) *AlertScanTrigger {
	return &AlertScanTrigger{
		config:  cfg,
		scanner: scanner,
		claims:  claims,
		logger:  logger,
		now:     time.Now,
	}
}

// SetObserver attaches a scan observer, typically the collections metrics
func (t *AlertScanTrigger) SetObserver(observer ScanObserver) {
	t.observer = observer
}

// Start starts the trigger loop
func (t *AlertScanTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	if !t.config.Enabled {
		t.mu.Unlock()
		t.logger.Info("Alert scan scheduler is disabled")
		return nil
	}
	if err := t.config.Validate(); err != nil {
		t.mu.Unlock()
		return err
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Alert scan scheduler started",
		zap.Duration("interval", t.config.Interval),
		zap.Duration("lock_ttl", t.config.LockTTL),
	)
	return nil
}

// Stop stops the trigger and waits for an in-flight scan
func (t *AlertScanTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Alert scan scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (t *AlertScanTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// LastRunAt returns when this replica last completed a scan
func (t *AlertScanTrigger) LastRunAt() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRunAt
}

func (t *AlertScanTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.RunOnce(ctx); err != nil && !errors.Is(err, ErrScanAlreadyClaimed) {
				t.logger.Error("Scheduled alert scan failed", zap.Error(err))
			}
		}
	}
}

// BucketKey returns the claim key for the interval containing at
func (t *AlertScanTrigger) BucketKey(at time.Time) string {
	return "alert-scan:" + at.UTC().Truncate(t.config.Interval).Format(time.RFC3339)
}

// RunOnce claims the current bucket and scans. It returns
// ErrScanAlreadyClaimed when the bucket is held elsewhere. The claim is
// released when the scan fails.
func (t *AlertScanTrigger) RunOnce(ctx context.Context) (*appcollections.ScanResponse, error) {
	key := t.BucketKey(t.now())
	claimed, err := t.claims.MarkProcessed(ctx, key, t.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to claim alert scan: %w", err)
	}
	if !claimed {
		t.logger.Debug("Alert scan bucket already claimed", zap.String("bucket", key))
		return nil, ErrScanAlreadyClaimed
	}

	ctx = logger.WithScanRun(ctx, t.logger, uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, t.config.JobTimeout)
	defer cancel()

	started := t.now()
	result, err := t.scanner.ScanAlerts(ctx)
	elapsed := t.now().Sub(started)

	if t.observer != nil {
		t.observer.ObserveScan(ctx, elapsed, result, err)
	}
	if err != nil {
		// a failed scan gives the bucket back so the next tick retries it
		if releaseErr := t.claims.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			logger.L(ctx).Warn("Failed to release alert scan bucket",
				zap.String("bucket", key),
				zap.Error(releaseErr),
			)
		}
		return nil, err
	}

	finished := t.now()
	t.mu.Lock()
	t.lastRunAt = &finished
	t.mu.Unlock()

	logger.L(ctx).Info("Scheduled alert scan completed",
		zap.String("bucket", key),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("installments_updated", result.InstallmentsUpdated),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// TriggerManualRun runs a scan for the current bucket on a running trigger
func (t *AlertScanTrigger) TriggerManualRun(ctx context.Context) error {
	if !t.IsRunning() {
		return ErrSchedulerNotRunning
	}
	_, err := t.RunOnce(ctx)
	return err
}
