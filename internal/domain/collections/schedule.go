package collections

import (
	"fmt"

	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GenerateSchedule splits a financed sale into monthly installments.
//
// Each installment gets monto_con_intereses / N floored to cents; the rounding
// remainder goes to installment 1 so the schedule sums to the financed total.
// A total that leaves installments at zero is rejected.
func GenerateSchedule(sale *FinancedSale) ([]*Installment, error) {
	if sale == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Sale not found")
	}
	if sale.InstallmentCount <= 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Sale %s has no installment count", sale.ID))
	}
	if !sale.AmountWithInterest.IsPositive() {
		return nil, shared.NewDomainError(ErrInvalidAmount.Code, "Financed amount must be positive")
	}
	if sale.SaleDate.IsZero() && sale.FirstDueDate == nil {
		return nil, shared.NewDomainError(ErrInvalidDate.Code, "Sale date is required")
	}

	n := decimal.NewFromInt(int64(sale.InstallmentCount))
	base := sale.AmountWithInterest.Div(n).RoundFloor(2)
	if base.IsZero() {
		return nil, shared.NewDomainError(ErrInvalidAmount.Code,
			fmt.Sprintf("Financed amount %s is too small for %d installments", sale.AmountWithInterest.StringFixed(2), sale.InstallmentCount))
	}
	remainder := sale.AmountWithInterest.Sub(base.Mul(n))
	start := sale.ScheduleStart()

	installments := make([]*Installment, 0, sale.InstallmentCount)
	for k := 0; k < sale.InstallmentCount; k++ {
		amount := base
		if k == 0 {
			amount = amount.Add(remainder)
		}
		inst, err := NewInstallment(sale.ID, k+1, amount, AddMonths(start, k))
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, nil
}
