package quiz

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/{courseId}", h.CreateQuiz)
	r.Get("/{courseId}", h.GetQuiz)
	r.Post("/{courseId}/submit", h.Submit)
	r.Get("/{courseId}/attempt", h.GetAttempt)
	return r
}
