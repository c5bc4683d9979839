package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/vacationrentals/internal/api/middleware"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("allowed origin is echoed", func(t *testing.T) {
		handler := middleware.CORSMiddleware([]string{"https://rentals.example"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Origin", "https://rentals.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://rentals.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-Role")
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		handler := middleware.CORSMiddleware([]string{"https://rentals.example"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		handler := middleware.CORSMiddleware(nil)(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/bookings/b-1/status", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})
}
