package outline

import "github.com/go-chi/chi/v5"

// Register adds the outline routes to a router already scoped to /{user_id}.
func Register(r chi.Router, h *Handler) {
	r.Post("/", h.Generate)
	r.Get("/{course_id}", h.Get)
	r.Post("/{course_id}", h.Update)
}
