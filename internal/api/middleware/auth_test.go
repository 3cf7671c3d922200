package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udayana-events/server/internal/auth"
)

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUserRejectsMissingToken(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour, "test")
	var called bool
	handler := RequireUser(manager, "test")(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	require.False(t, called)
}

func TestRequireUserRejectsBadToken(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour, "test")
	var called bool
	handler := RequireUser(manager, "test")(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
}

func TestRequireUserStoresClaims(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour, "test")
	token, err := manager.Generate("user-1", "made", "user")
	require.NoError(t, err)

	var got *auth.Claims
	handler := RequireUser(manager, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		got = claims
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "user", got.Role)
}

func TestOptionalUserPassesAnonymous(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour, "test")

	var sawClaims bool
	handler := OptionalUser(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, sawClaims)
	}
}

func TestOptionalUserStoresValidClaims(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour, "test")
	token, err := manager.Generate("user-1", "made", "user")
	require.NoError(t, err)

	var got *auth.Claims
	handler := OptionalUser(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		got = claims
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	require.Equal(t, "user-1", got.Subject)
}

func TestRequireAdmin(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour, "test")

	run := func(role string) (*httptest.ResponseRecorder, bool) {
		token, err := manager.Generate("user-1", "made", role)
		require.NoError(t, err)

		var called bool
		handler := RequireUser(manager, "test")(RequireAdmin("test")(okHandler(t, &called)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec, called
	}

	rec, called := run("admin")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)

	rec, called = run("user")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)
}

func TestRequireAdminWithoutRequireUser(t *testing.T) {
	var called bool
	handler := RequireAdmin("test")(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
}
