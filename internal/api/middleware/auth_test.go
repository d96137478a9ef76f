package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runshare/runshare-api/internal/pkg/jwthelper"
)

const testSigningKey = "test-signing-key"

func newTestRouter(handler gin.HandlerFunc, middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", append(middlewares, handler)...)

	return router
}

func echoClaims(ctx *gin.Context) {
	userID, _ := ctx.Get(ContextKeyUserID)
	role, _ := ctx.Get(ContextKeyUserRole)
	ctx.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
}

func TestVerifyJWT(t *testing.T) {
	auth := NewAuthenticator(testSigningKey)
	router := newTestRouter(echoClaims, auth.VerifyJWT())

	token, err := jwthelper.GenerateSessionToken([]byte(testSigningKey), 42, "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestVerifyJWT_Rejections(t *testing.T) {
	auth := NewAuthenticator(testSigningKey)
	router := newTestRouter(echoClaims, auth.VerifyJWT())

	otherToken, err := jwthelper.GenerateSessionToken([]byte("other-key"), 1, "user")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"wrong signing key", "Bearer " + otherToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestOptionalJWT(t *testing.T) {
	auth := NewAuthenticator(testSigningKey)
	router := newTestRouter(echoClaims, auth.OptionalJWT())

	// Anonymous request passes through without claims.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)

	// Invalid token is ignored rather than rejected.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Valid token attaches claims.
	token, err := jwthelper.GenerateSessionToken([]byte(testSigningKey), 7, "user")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireAdmin(t *testing.T) {
	auth := NewAuthenticator(testSigningKey)
	router := newTestRouter(echoClaims, auth.VerifyJWT(), RequireAdmin())

	adminToken, err := jwthelper.GenerateSessionToken([]byte(testSigningKey), 1, "admin")
	require.NoError(t, err)
	userToken, err := jwthelper.GenerateSessionToken([]byte(testSigningKey), 2, "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	router := newTestRouter(func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	}, limiter.Limit())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// Burst of 2, so the third immediate request is rejected.
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
