package quiz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/config"
)

type Handler struct {
	service QuizService
}

func NewHandler(s QuizService) *Handler {
	return &Handler{service: s}
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q, err := h.service.Generate(r.Context(), claims.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, err)
		return
	}

	config.JSON(w, http.StatusOK, GenerateResponse{
		Success: true,
		Quiz:    QuizBody{QuizID: q.QuizID, Questions: q.Questions},
	})
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.service.Get(r.Context(), claims.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, view)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto SubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.Answers == nil {
		config.Error(w, http.StatusBadRequest, "Invalid answers format")
		return
	}

	res, err := h.service.Submit(r.Context(), claims.UserID, chi.URLParam(r, "courseId"), *dto.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, res)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.service.Attempt(r.Context(), claims.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, view)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		config.Error(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrQuizNotFound):
		config.Error(w, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, ErrAttemptNotFound):
		config.Error(w, http.StatusNotFound, "No quiz attempt found")
	case errors.Is(err, ErrQuizExists):
		config.Error(w, http.StatusBadRequest, "Quiz already exists for this course")
	case errors.Is(err, ErrAttemptExists):
		config.Error(w, http.StatusBadRequest, "You have already completed this quiz. You can only review your previous attempt.")
	case errors.Is(err, ErrAnswerCount):
		config.Error(w, http.StatusBadRequest, "Number of answers does not match number of questions")
	default:
		config.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
