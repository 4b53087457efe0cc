package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/infrastructure/cache"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/motoshop/backend/internal/infrastructure/event"
	"github.com/motoshop/backend/internal/infrastructure/export"
	"github.com/motoshop/backend/internal/infrastructure/persistence"
	"github.com/motoshop/backend/internal/interfaces/http/handler"
	"github.com/motoshop/backend/internal/interfaces/http/router"
	"github.com/motoshop/backend/pkg/client"
	"github.com/motoshop/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testApp is the cobros API served over httptest on a real database
type testApp struct {
	DB        *TestDB
	Clock     *testutil.Clock
	Events    *testutil.RecordingHandler
	Summaries *cache.InMemorySummaryCache
	Server    *httptest.Server
	Client    *client.Client
}

func newTestApp(t *testing.T, now time.Time) *testApp {
	t.Helper()
	tdb := NewTestDB(t)
	log := zap.NewNop()

	installmentRepo := persistence.NewGormInstallmentRepository(tdb.DB)
	paymentRepo := persistence.NewGormPaymentRepository(tdb.DB)
	alertRepo := persistence.NewGormAlertRepository(tdb.DB)
	saleRepo := persistence.NewGormFinancedSaleRepository(tdb.DB)
	txScope := persistence.NewGormTransactionScope(tdb.DB)

	summaries := cache.NewInMemorySummaryCache()
	events := testutil.NewRecordingHandler()
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(appcollections.NewSummaryInvalidationHandler(summaries, log))
	bus.Subscribe(events)

	clock := testutil.NewClock(now)
	settings := appcollections.DefaultSettings()

	installments := appcollections.NewInstallmentService(installmentRepo, saleRepo, txScope, clock, settings, log)
	installments.SetEventPublisher(bus)
	alerts := appcollections.NewAlertService(alertRepo, installmentRepo, txScope, clock, settings, log)
	alerts.SetEventPublisher(bus)
	reports := appcollections.NewReportService(installmentRepo, alertRepo, saleRepo, paymentRepo, clock, settings, log)
	reports.SetSummaryCache(summaries)
	reports.SetExporter(export.NewXLSXStandingsExporter())

	engine, stop, err := router.NewEngine(router.EngineOptions{
		ServiceName: "motoshop-test",
		HTTP:        config.HTTPConfig{RequestTimeout: 10 * time.Second, MaxBodySize: 1 << 20},
		Logger:      log,
	})
	require.NoError(t, err)
	t.Cleanup(stop)

	router.NewRouter(engine).Register(router.NewCollectionsGroup(router.CollectionsHandlers{
		Installments: handler.NewInstallmentHandler(installments),
		Alerts:       handler.NewAlertHandler(alerts),
		Reports:      handler.NewReportHandler(reports),
	})).Setup()

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	return &testApp{
		DB:        tdb,
		Clock:     clock,
		Events:    events,
		Summaries: summaries,
		Server:    srv,
		Client:    c,
	}
}
