package collections

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(count int, financed int64) *FinancedSale {
	first := day(2024, 1, 10)
	return &FinancedSale{
		ID:                 uuid.New(),
		ClientID:           uuid.New(),
		ClientName:         "Andrea Gómez",
		ClientDocument:     "1020304050",
		TotalAmount:        dec(financed - financed/10),
		AmountWithInterest: dec(financed),
		InterestRate:       decimal.RequireFromString("1.5"),
		InstallmentCount:   count,
		MonthlyPayment:     dec(financed / int64(count)),
		SaleDate:           day(2023, 12, 10),
		FirstDueDate:       &first,
	}
}

func payInstallment(t *testing.T, inst *Installment, amount int64, at time.Time) *Payment {
	t.Helper()
	require.NoError(t, inst.ApplyPayment(dec(amount), at))
	p, err := NewPayment(inst, dec(amount), at, PaymentMethodTransfer, "")
	require.NoError(t, err)
	return p
}

func TestBuildClientStanding(t *testing.T) {
	sale := createTestSale(4, 2_000_000)
	schedule, err := GenerateSchedule(sale)
	require.NoError(t, err)
	today := day(2024, 3, 20)

	payments := []*Payment{
		payInstallment(t, schedule[0], 500000, day(2024, 1, 9)),
		payInstallment(t, schedule[1], 200000, day(2024, 2, 12)),
	}
	schedule[1].LateFee = dec(1500)

	standing, err := BuildClientStanding(sale, schedule, payments, today)
	require.NoError(t, err)

	assert.Equal(t, sale.ClientID, standing.ClientID)
	assert.Equal(t, sale.ID, standing.SaleID)
	assert.True(t, standing.TotalPaid.Equal(dec(700000)))
	assert.True(t, standing.Outstanding.Equal(dec(1_300_000)))
	assert.True(t, standing.TotalLateFees.Equal(dec(1500)))
	assert.Equal(t, 4, standing.InstallmentsTotal)
	assert.Equal(t, 1, standing.InstallmentsPaid)
	assert.Equal(t, 3, standing.InstallmentsLeft)
	require.NotNil(t, standing.LastPaymentAt)
	assert.Equal(t, day(2024, 2, 12), *standing.LastPaymentAt)

	require.NotNil(t, standing.Next)
	assert.Equal(t, 2, standing.Next.Number)
	assert.Equal(t, day(2024, 2, 10), standing.Next.DueDate)
	assert.True(t, standing.Next.Outstanding.Equal(dec(300000)))
	assert.Equal(t, 39, standing.Next.DaysOverdue)
	assert.Equal(t, 39, standing.DaysOverdue())
}

func TestBuildClientStanding_AllPaid(t *testing.T) {
	sale := createTestSale(2, 1_000_000)
	schedule, err := GenerateSchedule(sale)
	require.NoError(t, err)

	var payments []*Payment
	for _, inst := range schedule {
		payments = append(payments, payInstallment(t, inst, inst.Amount.IntPart(), day(2024, 1, 5)))
	}

	standing, err := BuildClientStanding(sale, schedule, payments, day(2024, 6, 1))
	require.NoError(t, err)
	assert.Nil(t, standing.Next)
	assert.True(t, standing.Outstanding.IsZero())
	assert.Equal(t, 0, standing.InstallmentsLeft)
	assert.Equal(t, 0, standing.DaysOverdue())
}

func TestBuildClientStanding_CountsUpdatedPaidAmounts(t *testing.T) {
	sale := createTestSale(4, 2_000_000)
	schedule, err := GenerateSchedule(sale)
	require.NoError(t, err)
	today := day(2024, 3, 20)

	payments := []*Payment{payInstallment(t, schedule[0], 500000, day(2024, 1, 9))}
	settled := dec(500000)
	require.NoError(t, schedule[1].Update(InstallmentPatch{PaidAmount: &settled}, today))

	standing, err := BuildClientStanding(sale, schedule, payments, today)
	require.NoError(t, err)

	assert.Equal(t, 2, standing.InstallmentsPaid)
	assert.True(t, standing.TotalPaid.Equal(dec(1_000_000)), standing.TotalPaid.String())
	assert.True(t, standing.Outstanding.Equal(dec(1_000_000)), standing.Outstanding.String())
	require.NotNil(t, standing.Next)
	assert.Equal(t, 3, standing.Next.Number)
	require.NotNil(t, standing.LastPaymentAt)
	assert.Equal(t, day(2024, 1, 9), *standing.LastPaymentAt)
}

func TestBuildClientStanding_NoScheduleYet(t *testing.T) {
	sale := createTestSale(12, 6_000_000)

	standing, err := BuildClientStanding(sale, nil, nil, day(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 12, standing.InstallmentsTotal)
	assert.Equal(t, 12, standing.InstallmentsLeft)
	assert.Nil(t, standing.Next)
	assert.True(t, standing.Outstanding.Equal(dec(6_000_000)))
}

func TestBuildClientStanding_RejectsForeignRecords(t *testing.T) {
	sale := createTestSale(2, 1_000_000)
	other := createTestSale(2, 1_000_000)
	foreign, err := GenerateSchedule(other)
	require.NoError(t, err)

	_, err = BuildClientStanding(sale, foreign, nil, day(2024, 1, 1))
	assert.Error(t, err)

	_, err = BuildClientStanding(nil, nil, nil, day(2024, 1, 1))
	assert.Error(t, err)
}

func TestSortByUrgency(t *testing.T) {
	mk := func(name string, days int, outstanding int64) ClientStanding {
		s := ClientStanding{ClientName: name, Outstanding: dec(outstanding)}
		if days >= 0 {
			s.Next = &NextInstallment{DaysOverdue: days}
		}
		return s
	}

	standings := []ClientStanding{
		mk("al dia", 0, 900000),
		mk("10 dias poco", 10, 100000),
		mk("30 dias", 30, 50000),
		mk("10 dias mucho", 10, 800000),
		mk("pagado", -1, 0),
	}

	SortByUrgency(standings)

	names := make([]string, len(standings))
	for i, s := range standings {
		names[i] = s.ClientName
	}
	assert.Equal(t, []string{"30 dias", "10 dias mucho", "10 dias poco", "al dia", "pagado"}, names)

	top := TopAtRisk(standings, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "30 dias", top[0].ClientName)
	assert.Equal(t, "10 dias mucho", top[1].ClientName)

	assert.Len(t, TopAtRisk(standings, 10), 4, "paid-off clients are excluded")
}
