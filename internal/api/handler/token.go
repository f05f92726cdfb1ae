package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lutrii/payments/internal/api/request"
	"github.com/lutrii/payments/internal/api/response"
	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/model"
)

type Token struct {
	svc *core.TokenRegistryService
}

func NewToken(svc *core.TokenRegistryService) *Token {
	return &Token{svc: svc}
}

// List godoc
//
//	@Summary		List registered tokens
//	@Description	Returns every token on the allow-list, active and disabled.
//	@Tags			Tokens
//	@Success		200	{array}		model.Token
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/tokens [get]
func (h *Token) List(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tokens)
}

// Create godoc
//
//	@Summary		Register a token
//	@Description	Adds a token to the allow-list of accepted payment and settlement tokens.
//	@Tags			Tokens
//	@Param			body	body		request.CreateToken	true	"Token details"
//	@Success		201		{object}	model.Token
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/tokens [post]
func (h *Token) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateToken
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	token := &model.Token{
		ID:        req.ID,
		Symbol:    req.Symbol,
		Decimals:  req.Decimals,
		Status:    model.TokenActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.svc.Create(r.Context(), token); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, token)
}

// Get godoc
//
//	@Summary		Get a token
//	@Tags			Tokens
//	@Param			id	path		string	true	"Token ID"
//	@Success		200	{object}	model.Token
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/tokens/{id} [get]
func (h *Token) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, token)
}

// Disable godoc
//
//	@Summary		Disable a token
//	@Description	Removes a token from the active allow-list. Subscriptions paying with it start failing validation on their next charge.
//	@Tags			Tokens
//	@Param			id	path	string	true	"Token ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/tokens/{id}/disable [post]
func (h *Token) Disable(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Disable(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
