package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sqlarena/sqlarena/internal/auth"
	"github.com/sqlarena/sqlarena/internal/response"
)

// Messages for rejected bearer tokens.
const (
	MsgAuthRequired = "Authentication required"
	MsgTokenInvalid = "Invalid token"
	MsgTokenExpired = "Token expired"
)

// TokenValidator checks a session token.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the token claims in the request context.
func Authenticate(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(logger, r, "missing_token")
				response.Error(w, http.StatusUnauthorized, MsgAuthRequired)
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				msg, reason := MsgTokenInvalid, "invalid_token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg, reason = MsgTokenExpired, "expired_token"
				}
				logAuthFailure(logger, r, reason)
				response.Error(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", clientIP(r)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}
