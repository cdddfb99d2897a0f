package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grivax/grivax-api/internal/middlewares"
	"github.com/grivax/grivax-api/internal/testutil"
	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func TestModelRateLimit(t *testing.T) {
	h := middlewares.ModelRateLimit(2)(ok)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, testutil.Do(t, h, http.MethodPost, "/", "a1b2c3d4e5", nil).Code)
	}
	rec := testutil.Do(t, h, http.MethodPost, "/", "a1b2c3d4e5", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")

	t.Run("ReadsPassThrough", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, testutil.Do(t, h, http.MethodGet, "/", "a1b2c3d4e5", nil).Code)
	})

	t.Run("KeyedPerUser", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, testutil.Do(t, h, http.MethodPost, "/", "ffffffffff", nil).Code)
	})

	t.Run("Disabled", func(t *testing.T) {
		h := middlewares.ModelRateLimit(0)(ok)
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, testutil.Do(t, h, http.MethodPost, "/", "", nil).Code)
		}
	})
}

func TestCors(t *testing.T) {
	h := middlewares.Cors([]string{"http://localhost:3000"})(ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/courses/user", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
