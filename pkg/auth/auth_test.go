package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "fitsocial.test"}

func TestSignAndParseRoundTrip(t *testing.T) {
	token, err := Sign(Claims{
		Subject:   "user-1",
		Email:     "ana@example.com",
		Role:      RoleAdmin,
		Scopes:    map[string]struct{}{"goals:write": {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}, testConfig)
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "ana@example.com", claims.Email)
	require.True(t, claims.IsAdmin())
	require.True(t, claims.HasScope("goals:write"))
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, Config{Secret: testConfig.Secret, Issuer: "someone-else"})
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1", ExpiresAt: time.Now().Add(-time.Minute)}, testConfig)
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseEmptyToken(t *testing.T) {
	_, err := Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	called := false
	mw := NewMiddleware(testConfig, nil)
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, called)
	require.Contains(t, rr.Body.String(), "missing bearer token")
}

func TestMiddlewareStoresClaims(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-7", ExpiresAt: time.Now().Add(time.Hour)}, testConfig)
	require.NoError(t, err)

	var got *Claims
	mw := NewMiddleware(testConfig, nil)
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	require.Equal(t, "user-7", got.Subject)
}

func TestMiddlewareSkipper(t *testing.T) {
	called := false
	mw := NewMiddleware(testConfig, func(r *http.Request) bool { return r.URL.Path == "/healthz" })
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.True(t, called)
}
