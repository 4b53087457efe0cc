package collections

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// NextInstallment is the lowest-numbered installment still owed
type NextInstallment struct {
	Number      int
	DueDate     time.Time
	Amount      decimal.Decimal
	Outstanding decimal.Decimal
	DaysOverdue int
}

// ClientStanding (cliente financiado) is a client's position on one financed sale
type ClientStanding struct {
	ClientID           uuid.UUID
	ClientName         string
	ClientDocument     string
	SaleID             uuid.UUID
	TotalAmount        decimal.Decimal
	AmountWithInterest decimal.Decimal
	TotalPaid          decimal.Decimal
	Outstanding        decimal.Decimal
	TotalLateFees      decimal.Decimal
	InstallmentsTotal  int
	InstallmentsPaid   int
	InstallmentsLeft   int
	Next               *NextInstallment
	InterestRate       decimal.Decimal
	MonthlyPayment     decimal.Decimal
	LastPaymentAt      *time.Time
}

// DaysOverdue returns how late the next installment is, 0 when nothing is owed
func (s ClientStanding) DaysOverdue() int {
	if s.Next == nil {
		return 0
	}
	return s.Next.DaysOverdue
}

// BuildClientStanding aggregates a sale with its installments and payments as of today.
// total_pagado is the sum of the installments' monto_pagado, so corrections made
// through an update count the same as ledger payments. Payments only supply the
// last payment date.
func BuildClientStanding(sale *FinancedSale, installments []*Installment, payments []*Payment, today time.Time) (ClientStanding, error) {
	if sale == nil {
		return ClientStanding{}, shared.NewDomainError(shared.ErrNotFound.Code, "Sale not found")
	}

	standing := ClientStanding{
		ClientID:           sale.ClientID,
		ClientName:         sale.ClientName,
		ClientDocument:     sale.ClientDocument,
		SaleID:             sale.ID,
		TotalAmount:        sale.TotalAmount,
		AmountWithInterest: sale.AmountWithInterest,
		TotalPaid:          decimal.Zero,
		TotalLateFees:      decimal.Zero,
		InterestRate:       sale.InterestRate,
		MonthlyPayment:     sale.MonthlyPayment,
		InstallmentsTotal:  sale.InstallmentCount,
	}

	for _, p := range payments {
		if p.SaleID != sale.ID {
			return ClientStanding{}, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Payment %s does not belong to sale %s", p.ID, sale.ID))
		}
		if p.Amount.IsNegative() {
			return ClientStanding{}, shared.NewDomainError(ErrInvalidAmount.Code, fmt.Sprintf("Payment %s has a negative amount", p.ID))
		}
		if standing.LastPaymentAt == nil || p.PaidAt.After(*standing.LastPaymentAt) {
			paidAt := p.PaidAt
			standing.LastPaymentAt = &paidAt
		}
	}

	if len(installments) > 0 {
		standing.InstallmentsTotal = len(installments)
	}

	ordered := make([]*Installment, len(installments))
	copy(ordered, installments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	for _, inst := range ordered {
		if inst.SaleID != sale.ID {
			return ClientStanding{}, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Installment %s does not belong to sale %s", inst.ID, sale.ID))
		}
		if inst.LateFee.IsNegative() {
			return ClientStanding{}, shared.NewDomainError(ErrInvalidAmount.Code, fmt.Sprintf("Installment %d has a negative late fee", inst.Number))
		}
		c, err := inst.Classify(today)
		if err != nil {
			return ClientStanding{}, err
		}
		standing.TotalPaid = standing.TotalPaid.Add(inst.PaidAmount)
		standing.TotalLateFees = standing.TotalLateFees.Add(inst.LateFee)
		if c.Status == InstallmentStatusPaid {
			standing.InstallmentsPaid++
			continue
		}
		if standing.Next == nil {
			standing.Next = &NextInstallment{
				Number:      inst.Number,
				DueDate:     inst.DueDate,
				Amount:      inst.Amount,
				Outstanding: c.Outstanding,
				DaysOverdue: c.DaysOverdue,
			}
		}
	}

	standing.Outstanding = standing.AmountWithInterest.Sub(standing.TotalPaid)
	standing.InstallmentsLeft = standing.InstallmentsTotal - standing.InstallmentsPaid
	return standing, nil
}

// SortByUrgency orders standings by days overdue, then by outstanding balance, both descending
func SortByUrgency(standings []ClientStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		di, dj := standings[i].DaysOverdue(), standings[j].DaysOverdue()
		if di != dj {
			return di > dj
		}
		return standings[i].Outstanding.GreaterThan(standings[j].Outstanding)
	})
}

// TopAtRisk returns the n most urgent standings that still owe money
func TopAtRisk(standings []ClientStanding, n int) []ClientStanding {
	owing := make([]ClientStanding, 0, len(standings))
	for _, s := range standings {
		if s.Outstanding.IsPositive() {
			owing = append(owing, s)
		}
	}
	SortByUrgency(owing)
	if n >= 0 && n < len(owing) {
		owing = owing[:n]
	}
	return owing
}
