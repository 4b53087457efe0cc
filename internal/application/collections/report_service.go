package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"go.uber.org/zap"
)

// StandingsExporter renders client standings as a downloadable document
type StandingsExporter interface {
	ContentType() string
	Extension() string
	Export(standings []collections.ClientStanding, cutoff time.Time) ([]byte, error)
}

// ExportFile is a rendered export ready to be sent as an attachment
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ReportService builds the collections summary and client standings
type ReportService struct {
	installmentRepo collections.InstallmentRepository
	alertRepo       collections.AlertRepository
	saleRepo        collections.FinancedSaleRepository
	paymentRepo     collections.PaymentRepository
	cache           SummaryCache
	exporter        StandingsExporter
	clock           Clock
	settings        Settings
	logger          *zap.Logger
}

// NewReportService creates a new ReportService. cache and exporter may be nil.
func NewReportService(
	installmentRepo collections.InstallmentRepository,
	alertRepo collections.AlertRepository,
	saleRepo collections.FinancedSaleRepository,
	paymentRepo collections.PaymentRepository,
	clock Clock,
	settings Settings,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		installmentRepo: installmentRepo,
		alertRepo:       alertRepo,
		saleRepo:        saleRepo,
		paymentRepo:     paymentRepo,
		clock:           clock,
		settings:        settings,
		logger:          logger,
	}
}

// SetSummaryCache sets the cache used by Summary
func (s *ReportService) SetSummaryCache(cache SummaryCache) {
	s.cache = cache
}

// SetExporter sets the renderer used by ExportStandings
func (s *ReportService) SetExporter(exporter StandingsExporter) {
	s.exporter = exporter
}

// Summary returns the resumen de cobros as of today.
// Cache failures degrade to a direct computation.
func (s *ReportService) Summary(ctx context.Context) (*SummaryResponse, error) {
	today := collections.DateOf(s.clock.Now())

	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, today)
		if err != nil {
			s.logger.Warn("Summary cache read failed", zap.Error(err))
		} else if ok {
			resp := ToSummaryResponse(*cached)
			return &resp, nil
		}
		// read before loading so an invalidation during the load wins
		if generation, err = s.cache.Generation(ctx); err != nil {
			s.logger.Warn("Summary cache generation read failed", zap.Error(err))
		} else {
			cacheable = true
		}
	}

	// paid installments contribute nothing to the summary
	open, err := s.installmentRepo.FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open installments: %w", err)
	}
	active, err := s.alertRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active alerts: %w", err)
	}

	summary, err := collections.Summarize(open, active, today, s.settings.SummaryPolicy())
	if err != nil {
		return nil, err
	}

	if cacheable && s.settings.SummaryTTL > 0 {
		if err := s.cache.Set(ctx, summary, generation, s.settings.SummaryTTL); err != nil {
			s.logger.Warn("Summary cache write failed", zap.Error(err))
		}
	}

	resp := ToSummaryResponse(summary)
	return &resp, nil
}

// ClientStandings searches financed clients by name or document.
// Urgent orders the result by days overdue, then outstanding balance.
func (s *ReportService) ClientStandings(ctx context.Context, q StandingsQuery) ([]ClientStandingResponse, error) {
	standings, err := s.searchStandings(ctx, q)
	if err != nil {
		return nil, err
	}
	return ToClientStandingResponses(standings), nil
}

// TopAtRisk returns the n most urgent clients that still owe money.
// n <= 0 uses the configured default.
func (s *ReportService) TopAtRisk(ctx context.Context, n int) ([]ClientStandingResponse, error) {
	if n <= 0 {
		n = s.settings.TopAtRiskDefault
	}
	today := collections.DateOf(s.clock.Now())

	open, err := s.installmentRepo.FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open installments: %w", err)
	}
	groups := collections.GroupBySale(open)
	saleIDs := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		saleIDs[i] = g.SaleID
	}

	sales, err := s.saleRepo.FindByIDs(ctx, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	standings, err := s.buildStandings(ctx, sales, today)
	if err != nil {
		return nil, err
	}
	return ToClientStandingResponses(collections.TopAtRisk(standings, n)), nil
}

// ExportStandings renders the standings matching q with the configured exporter
func (s *ReportService) ExportStandings(ctx context.Context, q StandingsQuery) (*ExportFile, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("no standings exporter configured")
	}
	standings, err := s.searchStandings(ctx, q)
	if err != nil {
		return nil, err
	}
	today := collections.DateOf(s.clock.Now())
	content, err := s.exporter.Export(standings, today)
	if err != nil {
		return nil, fmt.Errorf("render standings: %w", err)
	}
	return &ExportFile{
		Name:        fmt.Sprintf("clientes-financiados-%s.%s", today.Format(DateLayout), s.exporter.Extension()),
		ContentType: s.exporter.ContentType(),
		Content:     content,
	}, nil
}

func (s *ReportService) searchStandings(ctx context.Context, q StandingsQuery) ([]collections.ClientStanding, error) {
	today := collections.DateOf(s.clock.Now())
	sales, err := s.saleRepo.Search(ctx, q.Query, s.settings.StandingsLimit)
	if err != nil {
		return nil, fmt.Errorf("search sales: %w", err)
	}
	standings, err := s.buildStandings(ctx, sales, today)
	if err != nil {
		return nil, err
	}
	if q.Urgent {
		collections.SortByUrgency(standings)
	}
	return standings, nil
}

// buildStandings loads installments and payments for all sales in two queries
// and aggregates one standing per sale, in the order of sales
func (s *ReportService) buildStandings(ctx context.Context, sales []*collections.FinancedSale, today time.Time) ([]collections.ClientStanding, error) {
	if len(sales) == 0 {
		return []collections.ClientStanding{}, nil
	}
	ids := make([]uuid.UUID, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}

	installments, err := s.installmentRepo.FindBySales(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load installments: %w", err)
	}
	payments, err := s.paymentRepo.FindBySales(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	instBySale := make(map[uuid.UUID][]*collections.Installment, len(sales))
	for _, inst := range installments {
		instBySale[inst.SaleID] = append(instBySale[inst.SaleID], inst)
	}
	paysBySale := make(map[uuid.UUID][]*collections.Payment, len(sales))
	for _, p := range payments {
		paysBySale[p.SaleID] = append(paysBySale[p.SaleID], p)
	}

	standings := make([]collections.ClientStanding, 0, len(sales))
	for _, sale := range sales {
		standing, err := collections.BuildClientStanding(sale, instBySale[sale.ID], paysBySale[sale.ID], today)
		if err != nil {
			return nil, err
		}
		standings = append(standings, standing)
	}
	return standings, nil
}
