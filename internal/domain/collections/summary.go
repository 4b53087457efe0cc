package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultHighRiskThreshold is the number of overdue installments that makes a sale high risk
const DefaultHighRiskThreshold = 2

// SummaryPolicy holds the thresholds of the collections summary
type SummaryPolicy struct {
	HorizonDays         int // window for cuotas_proximas_vencer
	HighRiskThreshold   int // overdue installments per sale that make it high risk
	HighRiskDaysOverdue int // a single installment this late also makes the sale high risk; 0 disables
}

// DefaultSummaryPolicy returns the default thresholds
func DefaultSummaryPolicy() SummaryPolicy {
	return SummaryPolicy{
		HorizonDays:       DefaultUpcomingHorizonDays,
		HighRiskThreshold: DefaultHighRiskThreshold,
	}
}

func (p SummaryPolicy) normalized() SummaryPolicy {
	if p.HorizonDays <= 0 {
		p.HorizonDays = DefaultUpcomingHorizonDays
	}
	if p.HighRiskThreshold <= 0 {
		p.HighRiskThreshold = DefaultHighRiskThreshold
	}
	return p
}

// CollectionSummary (resumen de cobros) is the system-wide collections snapshot
type CollectionSummary struct {
	OverdueInstallments  int
	UpcomingInstallments int
	TotalOverdueAmount   decimal.Decimal
	ActiveAlerts         int
	HighRiskSales        int
	CutoffDate           time.Time
}

// Summarize aggregates an installment and alert snapshot as of today
func Summarize(installments []*Installment, alerts []*Alert, today time.Time, policy SummaryPolicy) (CollectionSummary, error) {
	policy = policy.normalized()
	summary := CollectionSummary{
		TotalOverdueAmount: decimal.Zero,
		CutoffDate:         DateOf(today),
	}

	type saleRisk struct {
		overdue int
		maxDays int
	}
	risk := make(map[uuid.UUID]*saleRisk)

	for _, inst := range installments {
		c, err := inst.Classify(today)
		if err != nil {
			return CollectionSummary{}, err
		}
		if c.IsOverdue {
			summary.OverdueInstallments++
			summary.TotalOverdueAmount = summary.TotalOverdueAmount.Add(c.Outstanding)
			r, ok := risk[inst.SaleID]
			if !ok {
				r = &saleRisk{}
				risk[inst.SaleID] = r
			}
			r.overdue++
			if c.DaysOverdue > r.maxDays {
				r.maxDays = c.DaysOverdue
			}
			continue
		}
		if IsUpcoming(c, inst.DueDate, today, policy.HorizonDays) {
			summary.UpcomingInstallments++
		}
	}

	for _, r := range risk {
		if r.overdue >= policy.HighRiskThreshold ||
			(policy.HighRiskDaysOverdue > 0 && r.maxDays >= policy.HighRiskDaysOverdue) {
			summary.HighRiskSales++
		}
	}

	for _, a := range alerts {
		if a.IsActive() {
			summary.ActiveAlerts++
		}
	}
	return summary, nil
}
