package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutrii/payments/internal/api/request"
)

func newMerchantHandler() *Merchant {
	return NewMerchant(nil)
}

// --- Create ---

func TestMerchantCreate_InvalidJSON(t *testing.T) {
	h := newMerchantHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/merchants", "{bad json")

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestMerchantCreate_ValidationFailures(t *testing.T) {
	base := func() request.CreateMerchant {
		return request.CreateMerchant{
			Name:              "Acme Hosting",
			SettlementToken:   "usdc",
			SettlementAccount: "acme-settlement",
			AcceptedTokens:    []string{"usdc", "usdt"},
			FeeTier:           "verified",
		}
	}

	cases := []struct {
		name   string
		mutate func(req *request.CreateMerchant)
	}{
		{"missing name", func(req *request.CreateMerchant) { req.Name = "" }},
		{"missing settlement token", func(req *request.CreateMerchant) { req.SettlementToken = "" }},
		{"no accepted tokens", func(req *request.CreateMerchant) { req.AcceptedTokens = nil }},
		{"too many accepted tokens", func(req *request.CreateMerchant) {
			req.AcceptedTokens = []string{"a", "b", "c", "d", "e"}
		}},
		{"duplicate accepted tokens", func(req *request.CreateMerchant) {
			req.AcceptedTokens = []string{"usdc", "usdc"}
		}},
		{"unknown fee tier", func(req *request.CreateMerchant) { req.FeeTier = "gold" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newMerchantHandler()
			rec := httptest.NewRecorder()
			req := base()
			tc.mutate(&req)

			h.Create(rec, newRequest(http.MethodPost, "/merchants", req))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeErrorResponse(rec)
			assert.Contains(t, body["error"], "validation error")
		})
	}
}

// --- Update ---

func TestMerchantUpdate_MissingID(t *testing.T) {
	h := newMerchantHandler()
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequestRaw(http.MethodPut, "/merchants/", `{}`), "id", "")

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
