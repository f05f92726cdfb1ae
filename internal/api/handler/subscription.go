package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lutrii/payments/internal/api/request"
	"github.com/lutrii/payments/internal/api/response"
	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/model"
	"github.com/lutrii/payments/internal/platform"
)

type Subscription struct {
	svc      *core.SubscriptionService
	receipts *core.ReceiptService
}

func NewSubscription(svc *core.SubscriptionService, receipts *core.ReceiptService) *Subscription {
	return &Subscription{svc: svc, receipts: receipts}
}

// Create godoc
//
//	@Summary		Create a subscription
//	@Description	Opens a recurring payment agreement. The first charge falls due one billing interval after creation.
//	@Tags			Subscriptions
//	@Param			body	body		request.CreateSubscription	true	"Subscription details"
//	@Success		201		{object}	model.Subscription
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/subscriptions [post]
func (h *Subscription) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSubscription
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	sub := &model.Subscription{
		ID:            platform.NewID(),
		SubscriberID:  req.SubscriberID,
		MerchantID:    req.MerchantID,
		PaymentToken:  req.PaymentToken,
		Amount:        req.Amount,
		Interval:      req.Interval,
		MaxPerPayment: req.MaxPerPayment,
		LifetimeCap:   req.LifetimeCap,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.svc.Create(r.Context(), sub); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, sub)
}

// Get godoc
//
//	@Summary		Get a subscription
//	@Tags			Subscriptions
//	@Param			id	path		string	true	"Subscription ID"
//	@Success		200	{object}	model.Subscription
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/subscriptions/{id} [get]
func (h *Subscription) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sub)
}

// ListByMerchant godoc
//
//	@Summary		List a merchant's subscriptions
//	@Tags			Subscriptions
//	@Param			id		path		string	true	"Merchant ID"
//	@Param			limit	query		int		false	"Page size"	default(50)
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Success		200		{object}	response.PaginatedResponse{items=[]model.Subscription}
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/merchants/{id}/subscriptions [get]
func (h *Subscription) ListByMerchant(w http.ResponseWriter, r *http.Request) {
	merchantID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	subs, hasMore, err := h.svc.ListByMerchant(r.Context(), merchantID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(subs) > 0 {
		nextCursor = subs[len(subs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, subs, nextCursor, hasMore)
}

// Pause godoc
//
//	@Summary		Pause a subscription
//	@Description	Suspends charging. Resume reschedules the next charge one interval out, so a pause never produces catch-up charges.
//	@Tags			Subscriptions
//	@Param			id	path	string	true	"Subscription ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/pause [post]
func (h *Subscription) Pause(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.Pause)
}

// Resume godoc
//
//	@Summary		Resume a paused subscription
//	@Tags			Subscriptions
//	@Param			id	path	string	true	"Subscription ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/resume [post]
func (h *Subscription) Resume(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.Resume)
}

// Cancel godoc
//
//	@Summary		Cancel a subscription
//	@Description	Terminal. The record is kept for receipt history but never charges again.
//	@Tags			Subscriptions
//	@Param			id	path	string	true	"Subscription ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/cancel [post]
func (h *Subscription) Cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.Cancel)
}

// UpdateLimits godoc
//
//	@Summary		Update safety caps
//	@Description	Changes the per-payment and lifetime caps on an active subscription. Omitted fields keep their current value; zero lifts the cap.
//	@Tags			Subscriptions
//	@Param			id		path		string								true	"Subscription ID"
//	@Param			body	body		request.UpdateSubscriptionLimits	true	"New caps"
//	@Success		200		{object}	model.Subscription
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/limits [patch]
func (h *Subscription) UpdateLimits(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateSubscriptionLimits
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.svc.UpdateLimits(r.Context(), id, req.MaxPerPayment, req.LifetimeCap)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sub)
}

// ListReceipts godoc
//
//	@Summary		List payment receipts
//	@Tags			Subscriptions
//	@Param			id		path		string	true	"Subscription ID"
//	@Param			limit	query		int		false	"Page size"	default(50)
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Success		200		{object}	response.PaginatedResponse{items=[]model.PaymentReceipt}
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/receipts [get]
func (h *Subscription) ListReceipts(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	receipts, hasMore, err := h.receipts.ListPayments(r.Context(), id, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(receipts) > 0 {
		nextCursor = receipts[len(receipts)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, receipts, nextCursor, hasMore)
}

// ListBurns godoc
//
//	@Summary		List burn receipts
//	@Tags			Subscriptions
//	@Param			id		path		string	true	"Subscription ID"
//	@Param			limit	query		int		false	"Page size"	default(50)
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Success		200		{object}	response.PaginatedResponse{items=[]model.BurnReceipt}
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/subscriptions/{id}/burns [get]
func (h *Subscription) ListBurns(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	receipts, hasMore, err := h.receipts.ListBurns(r.Context(), id, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(receipts) > 0 {
		nextCursor = receipts[len(receipts)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, receipts, nextCursor, hasMore)
}

func (h *Subscription) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) error) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
