package auth

// Known OAuth scopes. Tokens without any scope are treated as full user tokens.
const (
	ScopeWorkoutsWrite = "workouts:write"
	ScopeWorkoutsRead  = "workouts:read"
	ScopeSocial        = "social"
)

// Allows reports whether the claims grant scope.
func Allows(claims *Claims, scope string) bool {
	if claims == nil {
		return false
	}
	if len(claims.Scopes) == 0 || claims.IsAdmin() {
		return true
	}
	return claims.HasScope(scope)
}
