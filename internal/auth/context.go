package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// claimsContextKey is the context key for storing validated token claims.
	claimsContextKey contextKey = "token_claims"
)

// ContextWithClaims adds validated token claims to the context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves token claims from the context.
// Returns nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// UserIDFromContext is a convenience function to get the user ID from context.
// Returns 0 if not authenticated.
func UserIDFromContext(ctx context.Context) int64 {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
