package course

import (
	"github.com/go-chi/chi/v5"
	"github.com/grivax/grivax-api/internal/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/user", h.Overview)
	r.Route("/{user_id}", func(r chi.Router) {
		r.Use(auth.RequireUserParam("user_id"))

		r.Get("/", h.List)
		r.Get("/{course_id}", h.Get)
		r.Post("/{course_id}/{unit_id}/{chapter_id}/complete", h.CompleteChapter)
		r.Get("/{course_id}/{unit_id}/{chapter_id}/status", h.ChapterStatus)
	})
	return r
}
