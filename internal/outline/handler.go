package outline

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grivax/grivax-api/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var dto GenerateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate(dto); err != nil {
		config.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.service.Generate(r.Context(), userID, dto)
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "Failed to process course generation request")
		return
	}

	config.JSON(w, http.StatusOK, GenerateResponse{
		Success:         true,
		CourseID:        g.CourseID,
		CourseStructure: g,
		RedirectURL:     fmt.Sprintf("/generate-courses/%s/%s", userID, g.CourseID),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Get(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id"))
	if err != nil {
		if errors.Is(err, ErrOutlineNotFound) {
			config.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		config.Error(w, http.StatusInternalServerError, "Failed to fetch course data")
		return
	}

	config.JSON(w, http.StatusOK, OutlineResponse{
		CourseID:    g.CourseID,
		Title:       g.Title,
		Description: g.Description,
		Modules:     g.Modules,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate(dto); err != nil {
		config.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	g, jobID, err := h.service.Update(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id"), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrOutlineNotFound):
			config.Error(w, http.StatusNotFound, "Course not found")
		case errors.Is(err, ErrAlreadyAccepted):
			config.Error(w, http.StatusBadRequest, "Course generation has already started")
		default:
			config.Error(w, http.StatusInternalServerError, "Failed to process course data")
		}
		return
	}

	config.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Course data updated successfully",
		"data":    g,
		"job_id":  jobID,
	})
}
