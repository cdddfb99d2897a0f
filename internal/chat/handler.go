package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grivax/grivax-api/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req RequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate(req); err != nil {
		config.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.service.Reply(r.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, ErrNoMessages) {
			config.Error(w, http.StatusBadRequest, "messages must not be empty")
			return
		}
		config.Error(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}

	config.JSON(w, http.StatusOK, ReplyResponse{Message: reply})
}
