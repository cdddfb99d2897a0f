package generation

import (
	"errors"
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

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Confirm(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to fetch course data")
		return
	}
	config.JSON(w, http.StatusOK, ConfirmResponse{
		Message:  "Course found",
		ID:       g.ID,
		CourseID: g.CourseID,
		UserID:   g.UserID,
	})
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, courseID, id := chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id"), chi.URLParam(r, "id")

	job, err := h.service.Accept(r.Context(), userID, courseID, id)
	if err != nil {
		writeError(w, err, "Failed to process acknowledgment")
		return
	}
	config.JSON(w, http.StatusOK, AcceptResponse{
		Success:  true,
		Message:  "Course details generation started",
		ID:       id,
		CourseID: courseID,
		UserID:   userID,
		JobID:    job.JobID,
		Started:  true,
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Status(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id"))
	if err != nil {
		writeError(w, err, "Failed to check course generation status")
		return
	}

	status := http.StatusOK
	if view.Status == StateGenerating {
		status = http.StatusAccepted
	}
	config.JSON(w, status, view)
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	userID, courseID := chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id")

	if err := h.service.Acknowledge(r.Context(), userID, courseID); err != nil {
		writeError(w, err, "Failed to process course generation acknowledgment")
		return
	}
	config.JSON(w, http.StatusOK, AcknowledgeResponse{
		Success:  true,
		Message:  "Course generation acknowledgment received",
		CourseID: courseID,
		UserID:   userID,
	})
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrOutlineNotFound), errors.Is(err, ErrCourseNotFound):
		config.Error(w, http.StatusNotFound, "Course not found")
	default:
		config.Error(w, http.StatusInternalServerError, fallback)
	}
}
