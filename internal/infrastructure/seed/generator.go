// Package seed fills a development database with financed sales, their
// schedules and a plausible payment history.
package seed

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
)

var installmentCounts = []int{6, 12, 18, 24, 36}

var paymentMethods = []collections.PaymentMethod{
	collections.PaymentMethodCash,
	collections.PaymentMethodCash,
	collections.PaymentMethodTransfer,
	collections.PaymentMethodCard,
	collections.PaymentMethodCheck,
}

// Generator produces fake sales and payments. The same seed yields the same data.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a Generator. Seed 0 picks a random seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Sale returns a financed motorcycle sale made up to two years before today
func (g *Generator) Sale(today time.Time) *collections.FinancedSale {
	f := g.faker
	count := installmentCounts[f.IntN(len(installmentCounts))]

	// prices in whole thousands of pesos
	total := decimal.NewFromInt(int64(f.IntRange(4_000, 18_000)) * 1000)
	monthlyRate := decimal.NewFromFloat(f.Float64Range(1.2, 2.8)).Round(2)
	withInterest := total.Mul(decimal.NewFromInt(1).Add(monthlyRate.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(int64(count))))).Round(0)

	saleDate := collections.DateOf(f.DateRange(today.AddDate(-2, 0, 0), today))
	return &collections.FinancedSale{
		ID:                 uuid.New(),
		ClientID:           uuid.New(),
		ClientName:         f.FirstName() + " " + f.LastName(),
		ClientDocument:     f.Numerify("##########"),
		TotalAmount:        total,
		AmountWithInterest: withInterest,
		InterestRate:       monthlyRate,
		InstallmentCount:   count,
		MonthlyPayment:     withInterest.Div(decimal.NewFromInt(int64(count))).RoundFloor(2),
		SaleDate:           saleDate,
	}
}

// PlannedPayment is a payment the seeder records
type PlannedPayment struct {
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    collections.PaymentMethod
	Reference string
}

// Payment decides how the client paid an installment. Installments not yet
// due are left unpaid; past ones are mostly paid in full, sometimes in part,
// sometimes not at all. ok is false when nothing was paid.
func (g *Generator) Payment(amount decimal.Decimal, due, today time.Time) (PlannedPayment, bool) {
	f := g.faker
	if due.After(today) {
		return PlannedPayment{}, false
	}

	roll := f.IntRange(1, 100)
	if roll > 85 {
		return PlannedPayment{}, false
	}
	paid := amount
	if roll > 70 {
		paid = amount.Mul(decimal.NewFromFloat(f.Float64Range(0.2, 0.8))).Round(0)
		if !paid.IsPositive() || paid.GreaterThanOrEqual(amount) {
			return PlannedPayment{}, false
		}
	}

	paidAt := due.AddDate(0, 0, f.IntRange(-5, 10))
	if paidAt.After(today) {
		paidAt = today
	}

	method := paymentMethods[f.IntN(len(paymentMethods))]
	ref := ""
	if method != collections.PaymentMethodCash {
		ref = f.Regex("[A-Z]{3}-[0-9]{8}")
	}
	return PlannedPayment{Amount: paid, PaidAt: paidAt, Method: method, Reference: ref}, true
}
