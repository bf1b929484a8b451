package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoPolymarket/fusiongate/internal/config"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{RequireAPIKey: true, APIKeys: []string{"k-0123456789"}}}
	r := gin.New()
	r.Use(AuthMiddleware(cfg))
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextClientKey)) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/who", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/who", map[string]string{HeaderAPIKey: "nope"}).Code)

	w := serve(r, http.MethodGet, "/who", map[string]string{HeaderAPIKey: "k-0123456789"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "key:k-012345", w.Body.String())

	cfg.Auth.RequireAPIKey = false
	r = gin.New()
	r.Use(AuthMiddleware(cfg))
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextClientKey)) })
	w = serve(r, http.MethodGet, "/who", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, AnonymousClient, w.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextClientKey, c.GetHeader("X-Client")); c.Next() })
	r.Use(RateLimitMiddleware(NewRateLimiter(0.001, 2)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	a := map[string]string{"X-Client": "a"}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", a).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", a).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/x", a).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", map[string]string{"X-Client": "b"}).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(0, 0)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	for range 5 {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	}
}

func TestIdempotencyMiddlewareReplays(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.Use(IdempotencyMiddleware(NewInMemIdempotencyStore(time.Minute)))
	r.POST("/orders", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusCreated, gin.H{"n": n})
	})

	h := map[string]string{HeaderIdempotencyKey: "abc"}
	first := serve(r, http.MethodPost, "/orders", h)
	second := serve(r, http.MethodPost, "/orders", h)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.EqualValues(t, 1, calls.Load())

	serve(r, http.MethodPost, "/orders", nil)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyMiddlewareRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.Use(IdempotencyMiddleware(NewInMemIdempotencyStore(time.Minute)))
	r.POST("/orders", func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusInternalServerError)
	})

	h := map[string]string{HeaderIdempotencyKey: "abc"}
	serve(r, http.MethodPost, "/orders", h)
	serve(r, http.MethodPost, "/orders", h)
	assert.EqualValues(t, 2, calls.Load())
}

func TestInMemIdempotencyStoreExpires(t *testing.T) {
	s := NewInMemIdempotencyStore(time.Minute)
	now := time.Unix(1_754_118_000, 0)
	s.now = func() time.Time { return now }

	_, hit := s.GetOrLock(t.Context(), "k")
	require.False(t, hit)
	rec, hit := s.GetOrLock(t.Context(), "k")
	require.True(t, hit)
	assert.True(t, rec.Processing)

	now = now.Add(2 * time.Minute)
	_, hit = s.GetOrLock(t.Context(), "k")
	assert.False(t, hit)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.NewValidation("idx", "bad")) })
	r.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	w := serve(r, http.MethodGet, "/app", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), string(apperrors.ErrValidation)))

	w = serve(r, http.MethodGet, "/plain", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.ErrInternal))
}

func TestIdempotencyMiddlewareSkipsHandlerErrors(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(IdempotencyMiddleware(NewInMemIdempotencyStore(time.Minute)))
	r.POST("/orders", func(c *gin.Context) {
		calls.Add(1)
		_ = c.Error(apperrors.NewValidation("signature", "required"))
	})

	h := map[string]string{HeaderIdempotencyKey: "abc"}
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/orders", h).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/orders", h).Code)
	assert.EqualValues(t, 2, calls.Load())
}
