package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authHarness(t *testing.T) (http.Handler, *model.Principal) {
	t.Helper()
	var seen model.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		seen = p
		w.WriteHeader(http.StatusOK)
	})
	log := logger.New(logger.Options{Level: "error", Output: io.Discard})
	return Authenticate(testSecret, log)(next), &seen
}

func TestAuthenticate(t *testing.T) {
	validClaims := Claims{
		UID:   "resident-1",
		Email: "r1@example.com",
		Role:  model.RoleResident,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("valid token passes the principal through", func(t *testing.T) {
		handler, seen := authHarness(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims, testSecret))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "resident-1", seen.UID)
		assert.Equal(t, model.RoleResident, seen.Role)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		handler, _ := authHarness(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme rejected", func(t *testing.T) {
		handler, _ := authHarness(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key rejected", func(t *testing.T) {
		handler, _ := authHarness(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims, "other-secret"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := validClaims
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		handler, _ := authHarness(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, expired, testSecret))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without uid rejected", func(t *testing.T) {
		anonymous := validClaims
		anonymous.UID = ""

		handler, _ := authHarness(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, anonymous, testSecret))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
