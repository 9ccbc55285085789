package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = AuthConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "gem-ledger", AdminRole: "admin"}

func TestParseToken(t *testing.T) {
	now := time.Now()

	t.Run("round trip", func(t *testing.T) {
		token, err := IssueToken(testAuth, 42, "admin", now, time.Minute)
		require.NoError(t, err)

		userID, role, err := ParseToken(testAuth, token)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), userID)
		assert.Equal(t, "admin", role)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := IssueToken(AuthConfig{Secret: testAuth.Secret, Issuer: "someone-else"}, 42, "", now, time.Minute)
		require.NoError(t, err)

		_, _, err = ParseToken(testAuth, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    testAuth.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAuth.Secret))
		require.NoError(t, err)

		_, _, err = ParseToken(testAuth, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: testAuth.Issuer}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, _, err = ParseToken(testAuth, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Auth(testAuth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "role": c.GetString(ContextRole)})
	})
	router.GET("/admin", Auth(testAuth), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	token, err := IssueToken(testAuth, 7, "", time.Now(), time.Minute)
	require.NoError(t, err)
	adminToken, err := IssueToken(testAuth, 1, "admin", time.Now(), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"valid", "/me", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "/me", "bearer " + token, http.StatusOK},
		{"no header", "/me", "", http.StatusUnauthorized},
		{"basic scheme", "/me", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"member on admin route", "/admin", "Bearer " + token, http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer " + adminToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
