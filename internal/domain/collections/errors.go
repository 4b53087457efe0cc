package collections

import "github.com/motoshop/backend/internal/domain/shared"

// Collections error sentinels. Compare with errors.Is; messages vary per call site.
var (
	ErrInvalidAmount      = shared.NewDomainError("INVALID_AMOUNT", "Invalid amount")
	ErrInvalidDate        = shared.NewDomainError("INVALID_DATE", "Invalid date")
	ErrInvalidTransition  = shared.NewDomainError("INVALID_TRANSITION", "Invalid alert state transition")
	ErrExceedsOutstanding = shared.NewDomainError("EXCEEDS_OUTSTANDING", "Payment exceeds outstanding balance")
	ErrScheduleExists     = shared.NewDomainError("SCHEDULE_EXISTS", "Sale already has an installment schedule")
)
