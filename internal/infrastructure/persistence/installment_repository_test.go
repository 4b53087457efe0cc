package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB opens GORM over a sqlmock connection with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var installmentColumns = []string{
	"id", "created_at", "updated_at", "version", "venta_id", "numero_cuota",
	"monto_cuota", "monto_pagado", "fecha_vencimiento", "estado", "monto_mora", "fecha_pago",
}

func TestGormInstallmentRepository_FindByID(t *testing.T) {
	t.Run("finds existing installment", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)

		id, saleID := uuid.New(), uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows(installmentColumns).
			AddRow(id, now, now, 3, saleID, 2, "400000.00", "150000.00",
				time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), "parcial", "0", nil)

		mock.ExpectQuery(`SELECT \* FROM "cuotas" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		inst, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, inst.ID)
		assert.Equal(t, saleID, inst.SaleID)
		assert.Equal(t, 2, inst.Number)
		assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(150000)))
		assert.Equal(t, collections.InstallmentStatusPartial, inst.Status)
		assert.Equal(t, 3, inst.Version)
		assert.Equal(t, 3, inst.PersistedVersion())
		assert.False(t, inst.IsNew())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "cuotas" WHERE id = \$1`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows(installmentColumns))

		inst, err := repo.FindByID(context.Background(), id)
		assert.Nil(t, inst)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstallmentRepository_FindAll(t *testing.T) {
	t.Run("overdue filter compares against today", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)

		saleID := uuid.New()
		today := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "cuotas" WHERE venta_id = \$1 AND \(monto_pagado < monto_cuota AND fecha_vencimiento < \$2\) ORDER BY fecha_vencimiento ASC,numero_cuota ASC LIMIT \$3`).
			WithArgs(saleID, "2024-03-15", 20).
			WillReturnRows(sqlmock.NewRows(installmentColumns))

		result, err := repo.FindAll(context.Background(), collections.InstallmentFilter{
			Filter:      shared.Filter{Page: 1, PageSize: 20},
			SaleID:      &saleID,
			OverdueOnly: true,
			Today:       today,
		})
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("partial status and whitelisted ordering", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)

		status := collections.InstallmentStatusPartial
		mock.ExpectQuery(`SELECT \* FROM "cuotas" WHERE monto_pagado > 0 AND monto_pagado < monto_cuota AND fecha_vencimiento >= \$1 ORDER BY monto_cuota ASC LIMIT \$2 OFFSET \$3`).
			WithArgs("2024-03-15", 10, 10).
			WillReturnRows(sqlmock.NewRows(installmentColumns))

		_, err := repo.FindAll(context.Background(), collections.InstallmentFilter{
			Filter: shared.Filter{Page: 2, PageSize: 10, OrderBy: "monto_cuota", OrderDir: "asc"},
			Status: &status,
			Today:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown order field falls back to due date", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "cuotas" ORDER BY fecha_vencimiento DESC LIMIT \$1`).
			WithArgs(20).
			WillReturnRows(sqlmock.NewRows(installmentColumns))

		_, err := repo.FindAll(context.Background(), collections.InstallmentFilter{
			Filter: shared.Filter{OrderBy: "1; DROP TABLE cuotas"},
			Today:  time.Now(),
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstallmentRepository_Count(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormInstallmentRepository(db)

	status := collections.InstallmentStatusPaid
	mock.ExpectQuery(`SELECT count\(\*\) FROM "cuotas" WHERE monto_pagado >= monto_cuota`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), collections.InstallmentFilter{Status: &status, Today: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInstallmentRepository_Save(t *testing.T) {
	loaded := func() *collections.Installment {
		inst, err := collections.NewInstallment(uuid.New(), 1, decimal.NewFromInt(400000), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		inst.MarkPersisted()
		require.NoError(t, inst.ApplyPayment(decimal.NewFromInt(100000), time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)))
		return inst
	}

	t.Run("updates when version matches", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)
		inst := loaded()

		mock.ExpectExec(`UPDATE "cuotas" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), inst))
		assert.Equal(t, 2, inst.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)
		inst := loaded()

		mock.ExpectExec(`UPDATE "cuotas" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "cuotas" WHERE id = \$1`).
			WithArgs(inst.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.Save(context.Background(), inst)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, inst.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check constraint violation is invalid input", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)
		inst := loaded()

		mock.ExpectExec(`UPDATE "cuotas"`).WillReturnError(gorm.ErrCheckConstraintViolated)

		err := repo.Save(context.Background(), inst)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, 1, inst.PersistedVersion())
	})

	t.Run("vanished row is not found", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(db)
		inst := loaded()

		mock.ExpectExec(`UPDATE "cuotas"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "cuotas"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		assert.ErrorIs(t, repo.Save(context.Background(), inst), shared.ErrNotFound)
	})
}

func TestGormInstallmentRepository_CreateBatch(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormInstallmentRepository(db)

	saleID := uuid.New()
	var schedule []*collections.Installment
	for n := 1; n <= 3; n++ {
		inst, err := collections.NewInstallment(saleID, n, decimal.NewFromInt(100000), time.Date(2024, time.Month(n), 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		schedule = append(schedule, inst)
	}

	mock.ExpectExec(`INSERT INTO "cuotas"`).WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.CreateBatch(context.Background(), schedule))
	for _, inst := range schedule {
		assert.False(t, inst.IsNew())
	}
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.NoError(t, repo.CreateBatch(context.Background(), nil))

	t.Run("check constraint violation is invalid input", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "cuotas"`).WillReturnError(gorm.ErrCheckConstraintViolated)

		err := repo.CreateBatch(context.Background(), schedule[:1])
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestGormInstallmentRepository_ExistsForSale(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormInstallmentRepository(db)

	saleID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "cuotas" WHERE venta_id = \$1`).
		WithArgs(saleID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	exists, err := repo.ExistsForSale(context.Background(), saleID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInstallmentRepository_FindBySales_Empty(t *testing.T) {
	db, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	result, err := NewGormInstallmentRepository(db).FindBySales(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
