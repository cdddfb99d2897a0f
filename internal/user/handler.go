package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/config"
	util "github.com/grivax/grivax-api/internal/utils"
)

const stateCookieName = "oauth_state"

type Handler struct {
	service   UserService
	session   *auth.Handler
	cipher    *config.Cipher
	providers map[string]*OAuthProvider
	baseURL   string
}

func NewHandler(s UserService, session *auth.Handler, cipher *config.Cipher, baseURL string, providers ...*OAuthProvider) *Handler {
	byName := make(map[string]*OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &Handler{
		service:   s,
		session:   session,
		cipher:    cipher,
		providers: byName,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto SignupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate(dto); err != nil {
		config.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	_, created, err := h.service.Signup(r.Context(), dto)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		config.Error(w, http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	}
	if err != nil {
		log.WithError(err).Error("Signup failed")
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !created {
		config.JSON(w, http.StatusOK, map[string]string{"message": "User already exists"})
		return
	}
	config.JSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate(dto); err != nil {
		config.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.service.Authenticate(r.Context(), dto)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			config.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.WithError(err).Error("Login failed")
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.issueSession(w, r, u) {
		return
	}
	config.JSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			config.Error(w, http.StatusNotFound, "User not found")
			return
		}
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	config.JSON(w, http.StatusOK, u)
}

func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		config.Error(w, http.StatusNotFound, "Unknown provider")
		return
	}

	state := provider.Name + ":" + util.ShortID() + util.ShortID()
	sealed, err := h.cipher.Encrypt(state)
	if err != nil {
		log.WithError(err).Error("Failed to seal OAuth state")
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    sealed,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.Config.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		config.Error(w, http.StatusNotFound, "Unknown provider")
		return
	}
	log = log.WithField("provider", provider.Name)

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		config.Error(w, http.StatusBadRequest, "missing OAuth state")
		return
	}
	expected, err := h.cipher.Decrypt(cookie.Value)
	if err != nil || expected == "" || expected != r.URL.Query().Get("state") {
		log.Warn("OAuth state mismatch")
		config.Error(w, http.StatusBadRequest, "invalid OAuth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		config.Error(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := provider.Config.Exchange(r.Context(), code)
	if err != nil {
		log.WithError(err).Warn("OAuth code exchange failed")
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	client := resty.NewWithClient(provider.Config.Client(r.Context(), token)).SetTimeout(10 * time.Second)
	profile, err := provider.FetchProfile(r.Context(), client)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch OAuth profile")
		config.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.service.UpsertOAuthUser(r.Context(), provider.Name, profile.Email, profile.Name)
	if err != nil {
		log.WithError(err).Error("Failed to upsert OAuth user")
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})
	if !h.issueSession(w, r, u) {
		return
	}
	http.Redirect(w, r, h.baseURL+"/", http.StatusFound)
}

func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, u *User) bool {
	token, err := auth.GenerateJWT(u.UserID, u.Email, auth.SessionTTL)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Failed to sign session token")
		config.Error(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	h.session.SetSession(w, token)
	return true
}
