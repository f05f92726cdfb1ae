package core

import "errors"

// Validation errors. Raised before any balance moves; the attempt aborts
// with no state change and the caller may retry later.
var (
	ErrNotFound              = errors.New("not found")
	ErrSubscriptionNotActive = errors.New("subscription not active")
	ErrSubscriptionPaused    = errors.New("subscription paused")
	ErrPaymentNotDue         = errors.New("payment not due")
	ErrPaymentInProgress     = errors.New("payment already in progress")
	ErrUnsupportedToken      = errors.New("unsupported token")
	ErrTokenNotAccepted      = errors.New("token not accepted by merchant")
	ErrSystemPaused          = errors.New("platform emergency pause active")
	ErrVelocityExceeded      = errors.New("daily volume limit exceeded")
	ErrPerPaymentCapExceeded = errors.New("amount exceeds per-payment cap")
	ErrLifetimeCapExceeded   = errors.New("lifetime cap exceeded")
)

// Execution errors. Raised mid-flight; the enclosing transaction rolls back
// in full, so a failed attempt leaves balances and counters untouched.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrFeeExceedsAmount   = errors.New("fee exceeds settlement amount")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrDistributionFailed = errors.New("fee distribution failed")
)
