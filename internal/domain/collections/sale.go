package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancedSale is the read model of a sale paid in installments.
// Sales are owned by the sales module; collections only reads them.
type FinancedSale struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	ClientName         string
	ClientDocument     string
	TotalAmount        decimal.Decimal
	AmountWithInterest decimal.Decimal
	InterestRate       decimal.Decimal
	InstallmentCount   int
	MonthlyPayment     decimal.Decimal
	SaleDate           time.Time
	FirstDueDate       *time.Time
}

// ScheduleStart returns the due date of installment 1
func (s *FinancedSale) ScheduleStart() time.Time {
	if s.FirstDueDate != nil && !s.FirstDueDate.IsZero() {
		return DateOf(*s.FirstDueDate)
	}
	return AddMonths(DateOf(s.SaleDate), 1)
}
