package collections

import (
	"fmt"
	"time"

	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Classification is the derived display state of an installment on a given day
type Classification struct {
	Status      InstallmentStatus
	Outstanding decimal.Decimal
	IsOverdue   bool
	DaysOverdue int
}

// Classify derives the status and lateness of an installment.
//
// Precedence: fully paid, then overdue, then partially paid, then pending.
// A partially paid installment past its due date is overdue, never partial.
func Classify(amount, paid decimal.Decimal, dueDate, today time.Time) (Classification, error) {
	if amount.IsNegative() {
		return Classification{}, shared.NewDomainError(ErrInvalidAmount.Code, fmt.Sprintf("Installment amount %s cannot be negative", amount))
	}
	if paid.IsNegative() {
		return Classification{}, shared.NewDomainError(ErrInvalidAmount.Code, fmt.Sprintf("Paid amount %s cannot be negative", paid))
	}
	if paid.GreaterThan(amount) {
		return Classification{}, shared.NewDomainError(ErrInvalidAmount.Code, fmt.Sprintf("Paid amount %s exceeds installment amount %s", paid, amount))
	}
	if dueDate.IsZero() {
		return Classification{}, shared.NewDomainError(ErrInvalidDate.Code, "Due date is required")
	}
	if today.IsZero() {
		return Classification{}, shared.NewDomainError(ErrInvalidDate.Code, "Reference date is required")
	}

	outstanding := amount.Sub(paid)
	c := Classification{Outstanding: outstanding}

	switch days := DaysBetween(dueDate, today); {
	case outstanding.IsZero():
		c.Status = InstallmentStatusPaid
	case days > 0:
		c.Status = InstallmentStatusOverdue
		c.IsOverdue = true
		c.DaysOverdue = days
	case paid.IsPositive():
		c.Status = InstallmentStatusPartial
	default:
		c.Status = InstallmentStatusPending
	}
	return c, nil
}

// IsUpcoming reports whether an installment falls due within horizonDays of today,
// today included, and still has a balance
func IsUpcoming(c Classification, dueDate, today time.Time, horizonDays int) bool {
	if c.IsOverdue || c.Status == InstallmentStatusPaid {
		return false
	}
	days := DaysBetween(today, dueDate)
	return days >= 0 && days <= horizonDays
}
