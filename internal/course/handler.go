package course

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	courses, err := h.service.Overview(r.Context(), claims.UserID)
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	config.JSON(w, http.StatusOK, OverviewResponse{Success: true, Courses: courses})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "Failed to fetch courses")
		return
	}
	config.JSON(w, http.StatusOK, courses)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "course_id"))
	if err != nil {
		writeError(w, err, "Failed to fetch course")
		return
	}
	config.JSON(w, http.StatusOK, c)
}

func (h *Handler) CompleteChapter(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CompleteChapter(r.Context(),
		chi.URLParam(r, "user_id"),
		chi.URLParam(r, "course_id"),
		chi.URLParam(r, "unit_id"),
		chi.URLParam(r, "chapter_id"),
	)
	if err != nil {
		writeError(w, err, "Failed to update chapter completion")
		return
	}
	config.JSON(w, http.StatusOK, res)
}

func (h *Handler) ChapterStatus(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ChapterStatus(r.Context(),
		chi.URLParam(r, "user_id"),
		chi.URLParam(r, "course_id"),
		chi.URLParam(r, "unit_id"),
		chi.URLParam(r, "chapter_id"),
	)
	if err != nil {
		writeError(w, err, "Failed to fetch chapter status")
		return
	}
	config.JSON(w, http.StatusOK, res)
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		config.Error(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrChapterNotFound):
		config.Error(w, http.StatusNotFound, "Chapter not found")
	default:
		config.Error(w, http.StatusInternalServerError, fallback)
	}
}
