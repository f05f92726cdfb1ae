package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/oracle"
	"github.com/lutrii/payments/internal/swap"
)

var (
	paymentsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_executed_total",
		Help: "Successfully committed payment executions",
	})
	paymentsAborted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_aborted_total",
		Help: "Payment attempts that rolled back, by reason",
	}, []string{"reason"})
	paymentSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_swaps_total",
		Help: "Payments that required a token swap",
	})
	feesCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_fees_collected_total",
		Help: "Total fees collected, in settlement minor units",
	})
	prepayments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annual_prepayments_total",
		Help: "Committed annual fee prepayments",
	})
	tokensBurned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_tokens_burned_total",
		Help: "Discount tokens burned for prepayments, in minor units",
	})
)

// ObservePayment records the outcome of one execution attempt.
func ObservePayment(fee int64, swapped bool, err error) {
	if err != nil {
		paymentsAborted.WithLabelValues(abortReason(err)).Inc()
		return
	}
	paymentsExecuted.Inc()
	feesCollected.Add(float64(fee))
	if swapped {
		paymentSwaps.Inc()
	}
}

// ObservePrepay records the outcome of one prepayment attempt.
func ObservePrepay(burned int64, err error) {
	if err != nil {
		paymentsAborted.WithLabelValues(abortReason(err)).Inc()
		return
	}
	prepayments.Inc()
	tokensBurned.Add(float64(burned))
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrSubscriptionNotActive):
		return "not_active"
	case errors.Is(err, core.ErrSubscriptionPaused):
		return "paused"
	case errors.Is(err, core.ErrPaymentNotDue):
		return "not_due"
	case errors.Is(err, core.ErrPaymentInProgress):
		return "in_progress"
	case errors.Is(err, core.ErrUnsupportedToken):
		return "unsupported_token"
	case errors.Is(err, core.ErrTokenNotAccepted):
		return "token_not_accepted"
	case errors.Is(err, core.ErrSystemPaused):
		return "system_paused"
	case errors.Is(err, core.ErrVelocityExceeded):
		return "velocity_exceeded"
	case errors.Is(err, core.ErrPerPaymentCapExceeded):
		return "per_payment_cap"
	case errors.Is(err, core.ErrLifetimeCapExceeded):
		return "lifetime_cap"
	case errors.Is(err, core.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, core.ErrDistributionFailed):
		return "distribution_failed"
	case errors.Is(err, core.ErrArithmeticOverflow):
		return "overflow"
	case errors.Is(err, swap.ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, swap.ErrSwapFailed):
		return "swap_failed"
	case errors.Is(err, oracle.ErrStalePrice):
		return "stale_price"
	default:
		return "internal"
	}
}
