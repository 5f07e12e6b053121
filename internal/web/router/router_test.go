package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/pagemeta/internal/web/ratelimit"
)

func TestRouter_Healthz(t *testing.T) {
	h := New(Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_DocumentsCatchAll(t *testing.T) {
	var gotPath string
	var hasDeadline bool
	h := New(Config{
		RequestTimeout: time.Second,
		Documents: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, hasDeadline = r.Context().Deadline()
		}),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/hello", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/posts/hello", gotPath)
	assert.True(t, hasDeadline)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := New(Config{Documents: http.NotFoundHandler(), ShowDetails: true})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/posts/hello", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "METHOD_NOT_ALLOWED", resp.Error.Code)
	assert.Equal(t, "/posts/hello", resp.Path)
	assert.Equal(t, http.MethodPost, resp.Method)
}

func TestRouter_NotFoundWithoutDocuments(t *testing.T) {
	h := New(Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Empty(t, resp.Path)
}

func TestRouter_RecoversPanics(t *testing.T) {
	h := New(Config{Documents: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render exploded")
	})})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_RateLimitsDocuments(t *testing.T) {
	limiter, err := ratelimit.NewTokenBucket(1, time.Minute)
	require.NoError(t, err)
	defer limiter.Close()

	h := New(Config{
		RateLimiter: limiter,
		Documents: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/hello", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/hello", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Health checks are never throttled
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
