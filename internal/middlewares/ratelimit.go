package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/config"
)

// ModelRateLimit limits POST requests on the routes that call the language
// model. Reads such as status polling pass through. Signed-in callers are
// keyed by user, everyone else by client IP.
func ModelRateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute < 1 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyByUserOrIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			config.Error(w, http.StatusTooManyRequests, "Too many requests, please slow down")
		}),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func keyByUserOrIP(r *http.Request) (string, error) {
	if claims, err := auth.GetUserClaimsFromContext(r.Context()); err == nil && claims.UserID != "" {
		return "user:" + claims.UserID, nil
	}
	return httprate.KeyByRealIP(r)
}
