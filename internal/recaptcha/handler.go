package recaptcha

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/grivax/grivax-api/internal/config"
)

type VerifyDTO struct {
	Token string `json:"token" validate:"required"`
}

type Handler struct {
	verifier Verifier
}

func NewHandler(v Verifier) *Handler {
	return &Handler{verifier: v}
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var dto VerifyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate(dto); err != nil {
		config.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	res, err := h.verifier.Verify(r.Context(), dto.Token, remoteIP)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("reCAPTCHA verification failed")
		config.Error(w, http.StatusBadGateway, "Failed to verify reCAPTCHA")
		return
	}
	config.JSON(w, http.StatusOK, res)
}
