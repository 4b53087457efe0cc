package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentRepository(t *testing.T) {
	t.Run("create appends a ledger row", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		inst, err := collections.NewInstallment(uuid.New(), 1, decimal.NewFromInt(400000), time.Now())
		require.NoError(t, err)
		payment, err := collections.NewPayment(inst, decimal.NewFromInt(100000), time.Now(), collections.PaymentMethodTransfer, "TRX-1")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "pagos"`).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewGormPaymentRepository(db).Create(context.Background(), payment))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("find by sales loads every sale at once", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		a, b := uuid.New(), uuid.New()
		paidAt := time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "venta_id", "cuota_id", "monto", "fecha_pago", "metodo", "referencia"}).
			AddRow(uuid.New(), paidAt, paidAt, a, uuid.New(), "250000.00", paidAt, "efectivo", "")

		mock.ExpectQuery(`SELECT \* FROM "pagos" WHERE venta_id IN \(\$1,\$2\) ORDER BY fecha_pago ASC`).
			WithArgs(a, b).
			WillReturnRows(rows)

		payments, err := NewGormPaymentRepository(db).FindBySales(context.Background(), []uuid.UUID{a, b})
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, collections.PaymentMethodCash, payments[0].Method)
		assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(250000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
