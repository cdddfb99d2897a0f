package generation

import "github.com/go-chi/chi/v5"

// Register adds the generation routes to a router already scoped to /{user_id}.
func Register(r chi.Router, h *Handler) {
	r.Get("/{course_id}/status", h.Status)
	r.Post("/{course_id}/status", h.Acknowledge)
	r.Get("/{course_id}/{id}", h.Confirm)
	r.Post("/{course_id}/{id}", h.Accept)
}
