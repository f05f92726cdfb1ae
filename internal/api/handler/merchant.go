package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lutrii/payments/internal/api/request"
	"github.com/lutrii/payments/internal/api/response"
	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/model"
	"github.com/lutrii/payments/internal/platform"
)

type Merchant struct {
	svc *core.MerchantService
}

func NewMerchant(svc *core.MerchantService) *Merchant {
	return &Merchant{svc: svc}
}

// List godoc
//
//	@Summary		List merchants
//	@Tags			Merchants
//	@Param			limit	query		int		false	"Page size"	default(50)
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Success		200		{object}	response.PaginatedResponse{items=[]model.MerchantProfile}
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/merchants [get]
func (h *Merchant) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	merchants, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(merchants) > 0 {
		nextCursor = merchants[len(merchants)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, merchants, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary		Register a merchant
//	@Description	Creates a merchant settlement profile. The settlement token must be on the allow-list and listed among the accepted tokens (max 4, no duplicates).
//	@Tags			Merchants
//	@Param			body	body		request.CreateMerchant	true	"Merchant details"
//	@Success		201		{object}	model.MerchantProfile
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/merchants [post]
func (h *Merchant) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMerchant
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	merchant := &model.MerchantProfile{
		ID:                platform.NewID(),
		Name:              req.Name,
		SettlementToken:   req.SettlementToken,
		SettlementAccount: req.SettlementAccount,
		AcceptedTokens:    req.AcceptedTokens,
		FeeTier:           req.FeeTier,
		Status:            model.MerchantActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.svc.Create(r.Context(), merchant); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, merchant)
}

// Get godoc
//
//	@Summary		Get a merchant
//	@Tags			Merchants
//	@Param			id	path		string	true	"Merchant ID"
//	@Success		200	{object}	model.MerchantProfile
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/merchants/{id} [get]
func (h *Merchant) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	merchant, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, merchant)
}

// Update godoc
//
//	@Summary		Update a merchant profile
//	@Description	Replaces the settlement configuration. Payments already in flight keep the profile snapshot they started with.
//	@Tags			Merchants
//	@Param			id		path		string					true	"Merchant ID"
//	@Param			body	body		request.UpdateMerchant	true	"New profile"
//	@Success		200		{object}	model.MerchantProfile
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/merchants/{id} [put]
func (h *Merchant) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMerchant
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	merchant := &model.MerchantProfile{
		ID:                id,
		Name:              req.Name,
		SettlementToken:   req.SettlementToken,
		SettlementAccount: req.SettlementAccount,
		AcceptedTokens:    req.AcceptedTokens,
		FeeTier:           req.FeeTier,
	}

	if err := h.svc.UpdateProfile(r.Context(), merchant); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	updated, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, updated)
}
