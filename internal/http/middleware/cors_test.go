package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("any origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORSMiddleware("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("configured origin allows credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORSMiddleware("https://partners.greez.test")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

		assert.Equal(t, "https://partners.greez.test", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORSMiddleware("*")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/products.add", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})
}
