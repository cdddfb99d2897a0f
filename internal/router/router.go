package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/chat"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/generation"
	"github.com/grivax/grivax-api/internal/middlewares"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/quiz"
	"github.com/grivax/grivax-api/internal/recaptcha"
	"github.com/grivax/grivax-api/internal/user"
)

type RouterConfig struct {
	UserHandler       *user.Handler
	SessionHandler    *auth.Handler
	OutlineHandler    *outline.Handler
	GenerationHandler *generation.Handler
	CourseHandler     *course.Handler
	QuizHandler       *quiz.Handler
	ChatHandler       *chat.Handler
	RecaptchaHandler  *recaptcha.Handler

	AllowedOrigins     []string
	RateLimitPerMinute int
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Cors(cfg.AllowedOrigins))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	modelLimit := middlewares.ModelRateLimit(cfg.RateLimitPerMinute)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", cfg.UserHandler.Signup)
		r.Post("/verify-recaptcha", cfg.RecaptchaHandler.Verify)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", cfg.UserHandler.Login)
			r.Post("/logout", cfg.SessionHandler.Logout)
			r.Get("/{provider}/login", cfg.UserHandler.OAuthStart)
			r.Get("/{provider}/callback", cfg.UserHandler.OAuthCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)

			r.Route("/generate-course/{user_id}", func(r chi.Router) {
				r.Use(auth.RequireUserParam("user_id"))
				r.Use(modelLimit)

				outline.Register(r, cfg.OutlineHandler)
				generation.Register(r, cfg.GenerationHandler)
			})

			r.Mount("/courses", course.Routes(cfg.CourseHandler))
			r.With(modelLimit).Mount("/quizzes", quiz.Routes(cfg.QuizHandler))
			r.With(modelLimit).Mount("/chat", chat.Routes(cfg.ChatHandler))
			r.Mount("/users", user.Routes(cfg.UserHandler))
		})
	})
	return r
}
