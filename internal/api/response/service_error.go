package response

import (
	"errors"
	"net/http"

	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/oracle"
	"github.com/lutrii/payments/internal/swap"
)

// WriteServiceError maps service-layer errors to HTTP status codes.
// Precondition failures are 409 because the request was well-formed and may
// succeed later; upstream market failures are 502.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrSubscriptionNotActive),
		errors.Is(err, core.ErrSubscriptionPaused),
		errors.Is(err, core.ErrPaymentNotDue),
		errors.Is(err, core.ErrPaymentInProgress),
		errors.Is(err, core.ErrSystemPaused),
		errors.Is(err, core.ErrVelocityExceeded),
		errors.Is(err, core.ErrPerPaymentCapExceeded),
		errors.Is(err, core.ErrLifetimeCapExceeded):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrUnsupportedToken),
		errors.Is(err, core.ErrTokenNotAccepted),
		errors.Is(err, core.ErrInsufficientFunds),
		errors.Is(err, core.ErrFeeExceedsAmount):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, swap.ErrSlippageExceeded),
		errors.Is(err, swap.ErrSwapFailed),
		errors.Is(err, oracle.ErrStalePrice):
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
