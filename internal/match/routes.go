package match

import (
	"net/http"

	"github.com/VotaMatch/VM-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the matching routes. Topic listing is public; every
// user-scoped route requires the anonymous X-User-ID header.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/topics", h.TopicHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.UserIDMiddleware)
		r.Post("/topics/select", h.SelectTopicsHandler)
		r.Get("/profile", h.ProfileHandler)
		r.Get("/question", h.QuestionHandler)
		r.Post("/answers", h.AnswerHandler)
		r.Get("/matches", h.MatchesHandler)
	})

	return r
}
