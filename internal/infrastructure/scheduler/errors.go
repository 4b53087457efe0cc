package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a manual run is requested on a stopped trigger
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrScanAlreadyClaimed is returned when another replica holds the current scan bucket
	ErrScanAlreadyClaimed = errors.New("alert scan already claimed for this interval")
)
