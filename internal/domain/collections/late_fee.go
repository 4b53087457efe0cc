package collections

import "github.com/shopspring/decimal"

// LateFeePolicy computes mora on overdue balances
type LateFeePolicy struct {
	DailyRate decimal.Decimal // fraction of the balance charged per day late
	GraceDays int             // days past due before mora starts
	CapRatio  decimal.Decimal // max mora as a fraction of the balance, 0 means uncapped
}

// Enabled reports whether the policy charges anything
func (p LateFeePolicy) Enabled() bool {
	return p.DailyRate.IsPositive()
}

// Compute returns the total mora owed on outstanding after daysOverdue days
func (p LateFeePolicy) Compute(outstanding decimal.Decimal, daysOverdue int) decimal.Decimal {
	chargeable := daysOverdue - p.GraceDays
	if !p.Enabled() || chargeable <= 0 || !outstanding.IsPositive() {
		return decimal.Zero
	}
	fee := outstanding.Mul(p.DailyRate).Mul(decimal.NewFromInt(int64(chargeable))).Round(2)
	if p.CapRatio.IsPositive() {
		limit := outstanding.Mul(p.CapRatio).Round(2)
		if fee.GreaterThan(limit) {
			fee = limit
		}
	}
	return fee
}
