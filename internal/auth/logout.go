package auth

import (
	"net/http"
	"time"

	"github.com/grivax/grivax-api/internal/config"
)

type Handler struct {
	cookieDomain string
	secure       bool
}

func NewHandler(cookieDomain string, secure bool) *Handler {
	return &Handler{cookieDomain: cookieDomain, secure: secure}
}

// SetSession writes the session cookie for a freshly issued token.
func (h *Handler) SetSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		Expires:  time.Now().Add(SessionTTL),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	config.JSON(w, http.StatusOK, map[string]string{
		"message": "logout successful",
	})
}
