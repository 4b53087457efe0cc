package integration

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/pkg/client"
	"github.com/motoshop/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newSale is a 12 x 500.000 sale whose first installment fell due on 2024-01-10
func newSale(name string) *collections.FinancedSale {
	first := testutil.Date(2024, time.January, 10)
	return &collections.FinancedSale{
		ID:                 uuid.New(),
		ClientID:           uuid.New(),
		ClientName:         name,
		ClientDocument:     "1020304050",
		TotalAmount:        dec("5000000"),
		AmountWithInterest: dec("6000000"),
		InterestRate:       dec("1.67"),
		InstallmentCount:   12,
		MonthlyPayment:     dec("500000"),
		SaleDate:           testutil.Date(2023, time.December, 10),
		FirstDueDate:       &first,
	}
}

func TestCollectionsAPI_PaymentLifecycle(t *testing.T) {
	app := newTestApp(t, time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC))
	ctx := testutil.Context(t, time.Minute)
	c := app.Client

	sale := newSale("Laura Gomez")
	app.DB.InsertSale(sale)

	// schedule
	schedule, err := c.GenerateSchedule(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, schedule.Installments, 12)
	assert.Equal(t, "2024-01-10", schedule.Installments[0].DueDate)
	assert.Equal(t, "2024-12-10", schedule.Installments[11].DueDate)
	assert.Equal(t, "vencida", schedule.Installments[2].Status)
	assert.Equal(t, "pendiente", schedule.Installments[3].Status)
	assert.Equal(t, int64(12), app.DB.Count("cuotas"))
	assert.Equal(t, 1, app.Events.Count(collections.EventTypeScheduleGenerated))

	_, err = c.GenerateSchedule(ctx, sale.ID)
	assert.ErrorIs(t, err, client.ErrConflict)

	_, err = c.GenerateSchedule(ctx, uuid.New())
	assert.ErrorIs(t, err, client.ErrNotFound)

	first, second, third := schedule.Installments[0], schedule.Installments[1], schedule.Installments[2]

	// payments
	paidAt := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	res, err := c.RecordPayment(ctx, first.ID, client.PaymentInput{
		Amount:    dec("500000"),
		PaidAt:    &paidAt,
		Method:    "transferencia",
		Reference: "TRX-00000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "pagada", res.Installment.Status)
	assert.True(t, res.Installment.Outstanding.IsZero())
	assert.True(t, res.Installment.LateFee.IsZero(), "paid on the due date")
	assert.Equal(t, "transferencia", res.Payment.Method)

	res, err = c.RecordPayment(ctx, second.ID, client.PaymentInput{Amount: dec("200000")})
	require.NoError(t, err)
	assert.Equal(t, "vencida", res.Installment.Status, "partial and late is overdue")
	assert.True(t, res.Installment.PaidAmount.Equal(dec("200000")))
	assert.True(t, res.Installment.Outstanding.Equal(dec("300000")))
	assert.Equal(t, "efectivo", res.Payment.Method)

	_, err = c.RecordPayment(ctx, second.ID, client.PaymentInput{Amount: dec("300000.01")})
	assert.ErrorIs(t, err, client.ErrRejected)

	_, err = c.RecordPayment(ctx, second.ID, client.PaymentInput{Amount: dec("-1")})
	assert.Error(t, err)

	assert.Equal(t, int64(2), app.DB.Count("pagos"))
	assert.Equal(t, 2, app.Events.Count(collections.EventTypeInstallmentPaymentApplied))
	assert.Equal(t, 1, app.Events.Count(collections.EventTypeInstallmentSettled))

	// listing
	overdue, meta, err := c.ListInstallments(ctx, client.InstallmentFilter{SaleID: &sale.ID, OnlyOverdue: true})
	require.NoError(t, err)
	assert.Len(t, overdue, 2)
	assert.Equal(t, int64(2), meta.Total)

	got, err := c.GetInstallment(ctx, third.ID)
	require.NoError(t, err)
	assert.Equal(t, 26, got.DaysOverdue)

	// alerts
	scan, err := c.ScanAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-05", scan.CutoffDate)
	assert.Equal(t, 2, scan.Created)

	types := map[string]int{}
	for _, a := range scan.Alerts {
		types[a.Type]++
	}
	assert.Equal(t, map[string]int{"multiple_vencidas": 1, "proximo_vencer": 1}, types)

	again, err := c.ScanAlerts(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Created, "a second scan on the same day raises nothing new")

	active, _, err := c.ListAlerts(ctx, client.AlertFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 2)

	var upcoming client.Alert
	for _, a := range active {
		if a.Type == "proximo_vencer" {
			upcoming = a
		}
	}
	read, err := c.MarkAlertRead(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, "leida", read.Status)
	assert.NotNil(t, read.ReadAt)

	resolved, err := c.MarkAlertResolved(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, "resuelta", resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = c.MarkAlertRead(ctx, upcoming.ID)
	assert.ErrorIs(t, err, client.ErrRejected, "resolved alerts are final")

	// summary
	summary, err := c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.OverdueInstallments)
	assert.Equal(t, 1, summary.UpcomingInstallments)
	assert.True(t, summary.TotalOverdueAmount.Equal(dec("800000")), summary.TotalOverdueAmount.String())
	assert.Equal(t, 1, summary.ActiveAlerts)
	assert.Equal(t, 1, summary.HighRiskSales)

	_, err = c.RecordPayment(ctx, third.ID, client.PaymentInput{Amount: dec("500000")})
	require.NoError(t, err)

	summary, err = c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OverdueInstallments, "payments invalidate the cached summary")
	assert.Zero(t, summary.HighRiskSales)

	// standings
	standings, err := c.SearchClients(ctx, "gomez", false)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	s := standings[0]
	assert.Equal(t, sale.ID, s.SaleID)
	assert.True(t, s.TotalPaid.Equal(dec("1200000")), s.TotalPaid.String())
	assert.Equal(t, 2, s.InstallmentsPaid)
	assert.Equal(t, 10, s.InstallmentsLeft)
	require.NotNil(t, s.Next)
	assert.Equal(t, 2, s.Next.Number)

	none, err := c.SearchClients(ctx, "nadie", false)
	require.NoError(t, err)
	assert.Empty(t, none)

	top, err := c.TopAtRisk(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, sale.ID, top[0].SaleID)
}

func TestCollectionsAPI_ExportStandings(t *testing.T) {
	app := newTestApp(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	ctx := testutil.Context(t, time.Minute)

	for _, name := range []string{"Laura Gomez", "Andres Rojas"} {
		sale := newSale(name)
		app.DB.InsertSale(sale)
		_, err := app.Client.GenerateSchedule(ctx, sale.ID)
		require.NoError(t, err)
	}

	resp, err := http.Get(app.Server.URL + "/pagos/clientes-financiados/exportar/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "clientes-financiados-2024-03-15.xlsx")

	book, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Clientes financiados")
	require.NoError(t, err)
	require.Len(t, rows, 5, "cutoff, header, two clients, totals")
	assert.Equal(t, "Corte: 2024-03-15", rows[0][0])
	assert.Equal(t, "Cliente", rows[1][0])
	assert.ElementsMatch(t, []string{"Laura Gomez", "Andres Rojas"}, []string{rows[2][0], rows[3][0]})
}

func TestCollectionsAPI_UpdateInstallment(t *testing.T) {
	app := newTestApp(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	ctx := testutil.Context(t, time.Minute)

	sale := newSale("Marta Diaz")
	app.DB.InsertSale(sale)
	schedule, err := app.Client.GenerateSchedule(ctx, sale.ID)
	require.NoError(t, err)
	inst := schedule.Installments[0]

	due := "2024-01-20"
	amount := dec("450000")
	updated, err := app.Client.UpdateInstallment(ctx, inst.ID, client.InstallmentPatch{Amount: &amount, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20", updated.DueDate)
	assert.True(t, updated.Amount.Equal(amount))
	assert.Greater(t, updated.Version, inst.Version)
	assert.Equal(t, 1, app.Events.Count(collections.EventTypeInstallmentUpdated))

	negative := dec("-5")
	_, err = app.Client.UpdateInstallment(ctx, inst.ID, client.InstallmentPatch{Amount: &negative})
	assert.ErrorIs(t, err, client.ErrValidation)

	// a paid amount corrected by hand counts toward the client's standing
	settle := dec("500000")
	second, err := app.Client.UpdateInstallment(ctx, schedule.Installments[1].ID, client.InstallmentPatch{PaidAmount: &settle})
	require.NoError(t, err)
	assert.Equal(t, "pagada", second.Status)
	standings, err := app.Client.SearchClients(ctx, "marta", false)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 1, standings[0].InstallmentsPaid)
	assert.True(t, standings[0].TotalPaid.Equal(settle), standings[0].TotalPaid.String())
	assert.True(t, standings[0].Outstanding.Equal(dec("5500000")), standings[0].Outstanding.String())

	// a waived installment is stored with a zero amount
	zero := dec("0")
	waived, err := app.Client.UpdateInstallment(ctx, schedule.Installments[2].ID, client.InstallmentPatch{Amount: &zero, PaidAmount: &zero})
	require.NoError(t, err)
	assert.Equal(t, "pagada", waived.Status)

	// the clock moves past the new due date
	app.Clock.Set(time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC))
	got, err := app.Client.GetInstallment(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "vencida", got.Status)
	assert.Equal(t, 5, got.DaysOverdue)
}

// Concurrent payments on one installment never lose an update: each accepted
// payment is in the ledger and in monto_pagado, the rest see a conflict.
func TestCollectionsAPI_ConcurrentPayments(t *testing.T) {
	app := newTestApp(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	ctx := testutil.Context(t, time.Minute)

	sale := newSale("Pedro Lopez")
	app.DB.InsertSale(sale)
	schedule, err := app.Client.GenerateSchedule(ctx, sale.ID)
	require.NoError(t, err)
	inst := schedule.Installments[0]

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := app.Client.RecordPayment(ctx, inst.ID, client.PaymentInput{Amount: dec("50000")})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, client.ErrConflict), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	require.Positive(t, accepted)
	got, err := app.Client.GetInstallment(ctx, inst.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(dec("50000").Mul(decimal.NewFromInt(int64(accepted)))), got.PaidAmount.String())
	assert.Equal(t, int64(accepted), app.DB.Count("pagos"))
}
