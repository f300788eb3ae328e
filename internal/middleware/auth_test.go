package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/training-portal/internal/config"
	"github.com/training-portal/internal/model"
)

func newTestAuth(t *testing.T) *AuthMiddleware {
	t.Helper()
	return NewAuthMiddleware(config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}, false)
}

func testEmployee(role model.Role) *model.Employee {
	return &model.Employee{
		ID:    "emp1",
		Email: "emp@example.com",
		Role:  role,
	}
}

func TestAuthMiddleware_TokenRoundTrip(t *testing.T) {
	auth := newTestAuth(t)

	token, expiresAt, err := auth.GenerateToken(testEmployee(model.RoleAdmin))
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, int64(0))

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp1", claims.UserID)
	assert.Equal(t, "emp@example.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestAuthMiddleware_ValidateToken_Rejects(t *testing.T) {
	auth := newTestAuth(t)

	token, _, err := auth.GenerateToken(testEmployee(model.RoleEmployee))
	require.NoError(t, err)

	t.Run("tampered token", func(t *testing.T) {
		_, err := auth.ValidateToken(token + "x")
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := auth.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthMiddleware(config.JWTConfig{Secret: "other-secret", ExpirationHours: 1}, false)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewAuthMiddleware(config.JWTConfig{Secret: "test-secret", ExpirationHours: -1}, false)
		stale, _, err := expired.GenerateToken(testEmployee(model.RoleEmployee))
		require.NoError(t, err)

		_, err = auth.ValidateToken(stale)
		assert.Error(t, err)
	})
}

func TestAuthMiddleware_SessionFromRequest(t *testing.T) {
	auth := newTestAuth(t)
	token, _, err := auth.GenerateToken(testEmployee(model.RoleEmployee))
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/courses", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

		claims := auth.SessionFromRequest(r)
		require.NotNil(t, claims)
		assert.Equal(t, "emp1", claims.UserID)
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		claims := auth.SessionFromRequest(r)
		require.NotNil(t, claims)
		assert.Equal(t, "emp1", claims.UserID)
	})

	t.Run("no credentials", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/courses", nil)
		assert.Nil(t, auth.SessionFromRequest(r))
	})

	t.Run("invalid cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/courses", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "broken"})
		assert.Nil(t, auth.SessionFromRequest(r))
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	auth := newTestAuth(t)
	token, _, err := auth.GenerateToken(testEmployee(model.RoleEmployee))
	require.NoError(t, err)

	var got *model.SessionClaims
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid session passes with claims in context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, "emp1", got.UserID)
	})

	t.Run("missing session gets 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	auth := newTestAuth(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := auth.Authenticate(auth.RequireAdmin(next))

	t.Run("admin passes", func(t *testing.T) {
		token, _, err := auth.GenerateToken(testEmployee(model.RoleAdmin))
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/employees", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("employee gets 403", func(t *testing.T) {
		token, _, err := auth.GenerateToken(testEmployee(model.RoleEmployee))
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/employees", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
