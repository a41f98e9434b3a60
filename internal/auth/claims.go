// Package auth binds the shared bearer-token library to the API's caller model.
package auth

import (
	"context"

	authlib "github.com/a1dsv/NOVA-sub002/pkg/auth"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

// Claims mirrors the shared auth claims type for service convenience.
type Claims = authlib.Claims

// Config mirrors the shared auth config.
type Config = authlib.Config

// ParseClaims delegates to the shared auth parser.
func ParseClaims(token string, cfg Config) (*Claims, error) {
	return authlib.Parse(token, cfg)
}

// WithClaims stores the claims in the request context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return authlib.WithClaims(ctx, claims)
}

// FromContext retrieves claims from context.
func FromContext(ctx context.Context) (*Claims, bool) {
	return authlib.FromContext(ctx)
}

// CallerFromContext converts the request claims into a domain caller.
// Tokens without a subject are rejected.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	claims, ok := FromContext(ctx)
	if !ok || claims.Subject == "" {
		return domain.Caller{}, false
	}
	return domain.Caller{UserID: claims.Subject, Admin: claims.IsAdmin()}, true
}

// IdentityFromContext returns what the token says about the caller, used to
// mirror the account into the user store.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	claims, ok := FromContext(ctx)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, true
}
