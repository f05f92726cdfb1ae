package handler

import (
	"net/http"

	"github.com/lutrii/payments/internal/api/request"
	"github.com/lutrii/payments/internal/api/response"
	"github.com/lutrii/payments/internal/core"
)

type PlatformConfig struct {
	svc *core.PlatformConfigService
}

func NewPlatformConfig(svc *core.PlatformConfigService) *PlatformConfig {
	return &PlatformConfig{svc: svc}
}

// Get godoc
//
//	@Summary		Get platform config
//	@Description	Returns the emergency pause state, the daily volume limit and window, and platform-wide stats.
//	@Tags			Platform
//	@Success		200	{object}	model.PlatformConfig
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/platform/config [get]
func (h *PlatformConfig) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Get(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, cfg)
}

// Pause godoc
//
//	@Summary		Engage the emergency pause
//	@Description	While paused, every payment execution fails validation before any balance moves.
//	@Tags			Platform
//	@Success		204
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/platform/pause [post]
func (h *PlatformConfig) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetEmergencyPause(r.Context(), true); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unpause godoc
//
//	@Summary		Release the emergency pause
//	@Tags			Platform
//	@Success		204
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/platform/unpause [post]
func (h *PlatformConfig) Unpause(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetEmergencyPause(r.Context(), false); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetVolumeLimit godoc
//
//	@Summary		Set the daily volume limit
//	@Description	Caps total charge volume over a rolling 24h window. Zero disables the cap.
//	@Tags			Platform
//	@Param			body	body	request.SetVolumeLimit	true	"New limit"
//	@Success		204
//	@Failure		400	{object}	response.ErrorResponse
//	@Router			/platform/volume-limit [put]
func (h *PlatformConfig) SetVolumeLimit(w http.ResponseWriter, r *http.Request) {
	var req request.SetVolumeLimit
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetDailyVolumeLimit(r.Context(), req.Limit); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
