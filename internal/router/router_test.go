package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/chat"
	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/generation"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/quiz"
	"github.com/grivax/grivax-api/internal/recaptcha"
	"github.com/grivax/grivax-api/internal/router"
	"github.com/grivax/grivax-api/internal/search"
	"github.com/grivax/grivax-api/internal/testutil"
	"github.com/grivax/grivax-api/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	ctx := context.Background()
	auth.Init("router-tests-secret")
	db := testutil.NewDB(t)
	provider := testutil.Static("{}")

	cipher, err := config.NewCipher("01234567890123456789012345678901")
	require.NoError(t, err)
	images, err := search.NewImageSearcher(ctx, "", "", time.Second)
	require.NoError(t, err)
	videos, err := search.NewVideoSearcher(ctx, "", time.Second)
	require.NoError(t, err)

	session := auth.NewHandler("", false)
	outlines := outline.NewRepository(db)
	courses := course.NewCourseContainer(db)
	gen := generation.NewGenerationContainer(db, outlines, courses.Repo, provider, images, videos, config.GenerationSettings{SweepSchedule: "@every 1h"})
	t.Cleanup(func() { _ = gen.Close() })

	return router.New(router.RouterConfig{
		UserHandler:        user.NewUserContainer(db, &config.Settings{BaseURL: "http://localhost:3000"}, session, cipher).Handler,
		SessionHandler:     session,
		OutlineHandler:     outline.NewOutlineContainer(outlines, provider, gen.Service).Handler,
		GenerationHandler:  gen.Handler,
		CourseHandler:      courses.Handler,
		QuizHandler:        quiz.NewQuizContainer(db, courses.Repo, provider).Handler,
		ChatHandler:        chat.NewChatContainer(provider).Handler,
		RecaptchaHandler:   recaptcha.NewRecaptchaContainer("").Handler,
		AllowedOrigins:     []string{"http://localhost:3000"},
		RateLimitPerMinute: 20,
	})
}

func TestAuthBoundaries(t *testing.T) {
	r := newRouter(t)

	token, err := auth.GenerateJWT("a1b2c3d4e5", "a@example.com", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		cookie bool
		want   int
	}{
		{"CoursesNeedSession", http.MethodGet, "/api/courses/user", false, http.StatusUnauthorized},
		{"OverviewWithSession", http.MethodGet, "/api/courses/user", true, http.StatusOK},
		{"OtherUsersCourses", http.MethodGet, "/api/courses/ffffffffff", true, http.StatusForbidden},
		{"OtherUsersOutline", http.MethodGet, "/api/generate-course/ffffffffff/c0ffee0000", true, http.StatusForbidden},
		{"UnknownOutline", http.MethodGet, "/api/generate-course/a1b2c3d4e5/c0ffee0000", true, http.StatusNotFound},
		{"UnknownStatus", http.MethodGet, "/api/generate-course/a1b2c3d4e5/c0ffee0000/status", true, http.StatusNotFound},
		{"Me", http.MethodGet, "/api/users/me", true, http.StatusNotFound},
		{"Logout", http.MethodPost, "/api/auth/logout", false, http.StatusOK},
		{"Metrics", http.MethodGet, "/metrics", false, http.StatusOK},
		{"Health", http.MethodGet, "/healthz", false, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	t.Run("BearerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/courses/a1b2c3d4e5", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}
