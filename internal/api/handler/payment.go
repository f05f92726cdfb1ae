package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lutrii/payments/internal/api/request"
	"github.com/lutrii/payments/internal/api/response"
	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/metrics"
)

type Payment struct {
	executor *core.PaymentExecutor
	discount *core.DiscountService
}

func NewPayment(executor *core.PaymentExecutor, discount *core.DiscountService) *Payment {
	return &Payment{executor: executor, discount: discount}
}

// Execute godoc
//
//	@Summary		Execute a due payment
//	@Description	Attempts one charge for the named subscription. Callable by anyone at any time: a subscription that is not due, not active, or already being charged fails with a typed error and no state changes.
//	@Tags			Payments
//	@Param			body	body		request.ExecutePayment	true	"Subscription to charge"
//	@Success		200		{object}	model.PaymentReceipt
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse
//	@Router			/payments/execute [post]
func (h *Payment) Execute(w http.ResponseWriter, r *http.Request) {
	var req request.ExecutePayment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.executor.ExecutePayment(r.Context(), req.SubscriptionID)
	if err != nil {
		metrics.ObservePayment(0, false, err)
		response.WriteServiceError(w, err)
		return
	}
	metrics.ObservePayment(receipt.Fee, receipt.Swapped, nil)

	response.WriteJSON(w, http.StatusOK, receipt)
}

// Prepay godoc
//
//	@Summary		Prepay a year of fees
//	@Description	Burns discount tokens from the subscriber worth the configured fraction of a year's fees and extends the subscription's fee-free window by the coverage period. Extending an unexpired window stacks on its end.
//	@Tags			Payments
//	@Param			id	path		string	true	"Subscription ID"
//	@Success		200	{object}	model.BurnReceipt
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Failure		502	{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/prepay [post]
func (h *Payment) Prepay(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.discount.Prepay(r.Context(), id)
	if err != nil {
		metrics.ObservePrepay(0, err)
		response.WriteServiceError(w, err)
		return
	}
	metrics.ObservePrepay(receipt.BurnedAmount, nil)

	response.WriteJSON(w, http.StatusOK, receipt)
}
