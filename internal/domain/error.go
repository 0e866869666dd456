package domain

import "errors"

var (
	// Configuration errors. Fatal at startup.
	ErrTierTableInvalid = errors.New("tier table invalid")

	// Not-found errors.
	ErrCardNotFound    = errors.New("card not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrCodeNotFound    = errors.New("promo code not found")
	ErrNotFound        = errors.New("entity not found")

	// Domain-validation failures. No mutation is performed.
	ErrInsufficientBalance = errors.New("insufficient points balance")
	ErrInvalidTimeRange    = errors.New("end time before start time")
	ErrInvalidState        = errors.New("session already finished")
	ErrCodeAlreadyUsed     = errors.New("promo code already used")
	ErrCodeExpired         = errors.New("promo code expired")

	// Transient contention. Callers may retry with backoff.
	ErrBusy = errors.New("resource busy")

	// Storage faults inside an atomic unit. The unit is rolled back.
	ErrPersistence = errors.New("persistence failure")

	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrRateLimited        = errors.New("too many attempts")
)
