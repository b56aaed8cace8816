package auth

import (
	"errors"
	"log/slog"

	"github.com/sqlarena/sqlarena/internal/config"
)

// InsecureDefaultSecret is the fallback signing key outside production.
// Tokens signed with it can be forged by anyone who reads this file.
const InsecureDefaultSecret = "insecure-default-jwt-secret-change-me"

// ErrInsecureSecret aborts startup when production has no real signing key.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set to a non-default value in production")

// ResolveSigningSecret returns the key tokens are signed with.
// A missing or default secret is fatal in production; any other posture
// falls back to InsecureDefaultSecret and logs a warning.
func ResolveSigningSecret(secret string, posture config.Posture, logger *slog.Logger) (string, error) {
	if secret != "" && secret != InsecureDefaultSecret {
		return secret, nil
	}

	if posture == config.PostureProduction {
		return "", ErrInsecureSecret
	}

	logger.Warn("JWT_SECRET is not configured, signing tokens with the insecure default secret",
		slog.String("env", string(posture)),
	)
	return InsecureDefaultSecret, nil
}
