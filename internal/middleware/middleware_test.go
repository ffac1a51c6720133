package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/housecall-booking/internal/config"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    c.GetUint(ContextAdminID),
			"actor": Actor(c),
			"role":  c.GetString(ContextAdminRole),
		})
	})
	r.GET("/private", handlers...)
	return r
}

func get(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsIssuedToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	token, err := IssueToken(cfg.JWTSecret, 42, "wanjiru", "admin", time.Now())
	require.NoError(t, err)

	w := get(protectedRouter(cfg), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"actor":"wanjiru","role":"admin"}`, w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	r := protectedRouter(cfg)

	expired, err := IssueToken(cfg.JWTSecret, 1, "admin", "admin", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", 1, "admin", "admin", time.Now())
	require.NoError(t, err)
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 1, "username": "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := []struct {
		name string
		auth string
		code string
	}{
		{"missing", "", "MISSING_AUTHORIZATION"},
		{"wrong scheme", "Basic abc", "INVALID_AUTHORIZATION"},
		{"expired", "Bearer " + expired, "INVALID_TOKEN"},
		{"wrong secret", "Bearer " + foreign, "INVALID_TOKEN"},
		{"alg none", "Bearer " + unsigned, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, tc.auth)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	r := protectedRouter(cfg, RequireRole("admin"))

	viewer, err := IssueToken(cfg.JWTSecret, 2, "clerk", "viewer", time.Now())
	require.NoError(t, err)
	w := get(r, "Bearer "+viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	admin, err := IssueToken(cfg.JWTSecret, 1, "boss", "admin", time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+admin).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	minted := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, minted)
	assert.NotEqual(t, strings.Repeat("x", 65), minted)
	assert.Equal(t, minted, w.Body.String())
}

func TestRecoveryAnswersJSON(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func corsRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func corsRouter(allowed ...string) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(allowed))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSPreflight(t *testing.T) {
	w := corsRequest(corsRouter(), http.MethodOptions, "https://book.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://book.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSAllowList(t *testing.T) {
	r := corsRouter("https://Book.example.com/", "")

	w := corsRequest(r, http.MethodGet, "https://book.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://book.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = corsRequest(r, http.MethodGet, "https://evil.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = corsRequest(r, http.MethodOptions, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Same-origin and non-browser clients send no Origin.
	w = corsRequest(r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = corsRequest(corsRouter("*"), http.MethodGet, "https://anyone.example.com")
	assert.Equal(t, "https://anyone.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
