package collections

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUpcomingHorizonDays is how far ahead an unpaid installment counts as "por vencer"
const DefaultUpcomingHorizonDays = 7

// SaleInstallments is the installment snapshot of one sale
type SaleInstallments struct {
	SaleID       uuid.UUID
	Installments []*Installment
}

// GroupBySale splits installments into per-sale snapshots, ordered by first appearance
func GroupBySale(installments []*Installment) []SaleInstallments {
	index := make(map[uuid.UUID]int)
	var groups []SaleInstallments
	for _, inst := range installments {
		pos, ok := index[inst.SaleID]
		if !ok {
			pos = len(groups)
			index[inst.SaleID] = pos
			groups = append(groups, SaleInstallments{SaleID: inst.SaleID})
		}
		groups[pos].Installments = append(groups[pos].Installments, inst)
	}
	return groups
}

// GenerationResult lists the alerts a scan created and the active ones it refreshed
type GenerationResult struct {
	Created []*Alert
	Updated []*Alert
}

// All returns created and updated alerts together
func (r GenerationResult) All() []*Alert {
	all := make([]*Alert, 0, len(r.Created)+len(r.Updated))
	all = append(all, r.Created...)
	return append(all, r.Updated...)
}

// AlertGenerator derives payment alerts from installment snapshots
type AlertGenerator struct {
	horizonDays int
}

// NewAlertGenerator creates a generator; a non-positive horizon falls back to the default
func NewAlertGenerator(horizonDays int) *AlertGenerator {
	if horizonDays <= 0 {
		horizonDays = DefaultUpcomingHorizonDays
	}
	return &AlertGenerator{horizonDays: horizonDays}
}

// HorizonDays returns the upcoming-due window in days
func (g *AlertGenerator) HorizonDays() int {
	return g.horizonDays
}

// Generate scans each sale's installments and returns the alerts to persist.
//
// One overdue installment raises vencida for it; two or more raise a single
// multiple_vencidas for the sale, refreshing the message of an active one.
// Unpaid installments due within the horizon raise proximo_vencer.
// No (installment, tipo) pair gets a second active alert, across or within runs.
// Existing vencida alerts stay active when a sale escalates to multiple_vencidas.
func (g *AlertGenerator) Generate(snapshots []SaleInstallments, active []*Alert, today time.Time) (GenerationResult, error) {
	open := make(map[AlertKey]*Alert, len(active))
	for _, a := range active {
		if a.IsActive() {
			open[a.Key()] = a
		}
	}

	var result GenerationResult
	for _, snap := range snapshots {
		installments := make([]*Installment, len(snap.Installments))
		copy(installments, snap.Installments)
		sort.SliceStable(installments, func(i, j int) bool {
			return installments[i].Number < installments[j].Number
		})

		type overdueEntry struct {
			inst *Installment
			c    Classification
		}
		var overdue []overdueEntry

		for _, inst := range installments {
			c, err := inst.Classify(today)
			if err != nil {
				return GenerationResult{}, err
			}
			switch {
			case c.IsOverdue:
				overdue = append(overdue, overdueEntry{inst: inst, c: c})
			case IsUpcoming(c, inst.DueDate, today, g.horizonDays):
				key := AlertKey{SaleID: snap.SaleID, InstallmentID: inst.ID, Type: AlertTypeUpcoming}
				if _, exists := open[key]; exists {
					continue
				}
				alert, err := NewAlert(snap.SaleID, &inst.ID, AlertTypeUpcoming, upcomingMessage(inst, c, today), today)
				if err != nil {
					return GenerationResult{}, err
				}
				open[key] = alert
				result.Created = append(result.Created, alert)
			}
		}

		switch {
		case len(overdue) == 1:
			entry := overdue[0]
			key := AlertKey{SaleID: snap.SaleID, InstallmentID: entry.inst.ID, Type: AlertTypeOverdue}
			if _, exists := open[key]; exists {
				continue
			}
			alert, err := NewAlert(snap.SaleID, &entry.inst.ID, AlertTypeOverdue, overdueMessage(entry.inst, entry.c), today)
			if err != nil {
				return GenerationResult{}, err
			}
			open[key] = alert
			result.Created = append(result.Created, alert)

		case len(overdue) >= 2:
			total := decimal.Zero
			maxDays := 0
			for _, e := range overdue {
				total = total.Add(e.c.Outstanding)
				if e.c.DaysOverdue > maxDays {
					maxDays = e.c.DaysOverdue
				}
			}
			msg := multipleOverdueMessage(len(overdue), total, maxDays)
			key := AlertKey{SaleID: snap.SaleID, Type: AlertTypeMultipleOverdue}
			if existing, exists := open[key]; exists {
				if existing.RefreshMessage(msg, today) {
					result.Updated = append(result.Updated, existing)
				}
				continue
			}
			alert, err := NewAlert(snap.SaleID, nil, AlertTypeMultipleOverdue, msg, today)
			if err != nil {
				return GenerationResult{}, err
			}
			open[key] = alert
			result.Created = append(result.Created, alert)
		}
	}
	return result, nil
}
