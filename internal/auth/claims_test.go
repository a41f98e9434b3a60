package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	authlib "github.com/a1dsv/NOVA-sub002/pkg/auth"
)

func TestCallerFromContext(t *testing.T) {
	_, ok := CallerFromContext(context.Background())
	require.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{})
	_, ok = CallerFromContext(ctx)
	require.False(t, ok, "subject is required")

	ctx = WithClaims(context.Background(), &Claims{Subject: "alice", Role: authlib.RoleAdmin})
	caller, ok := CallerFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "alice", caller.UserID)
	require.True(t, caller.Admin)
}

func TestAllows(t *testing.T) {
	require.False(t, Allows(nil, ScopeSocial))
	require.True(t, Allows(&Claims{Subject: "a"}, ScopeWorkoutsWrite))

	scoped := &Claims{Subject: "a", Scopes: map[string]struct{}{ScopeWorkoutsRead: {}}}
	require.True(t, Allows(scoped, ScopeWorkoutsRead))
	require.False(t, Allows(scoped, ScopeWorkoutsWrite))

	scoped.Role = authlib.RoleAdmin
	require.True(t, Allows(scoped, ScopeWorkoutsWrite))
}

func TestMiddlewareSkipsHealthAndMetrics(t *testing.T) {
	mw := NewMiddleware(Config{Secret: "s"})
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNoContent, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
