// Package auth provides credential hashing and session token utilities.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Supported password hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// DefaultBcryptCost yields a few hundred milliseconds per hash on commodity hardware.
const DefaultBcryptCost = 12

// bcryptMaxBytes is the longest input bcrypt reads. Longer passwords are
// truncated, matching digests written by other bcrypt implementations.
const bcryptMaxBytes = 72

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

var (
	// ErrInvalidHash indicates the stored digest is malformed.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrUnsupportedAlgorithm indicates an unknown hashing algorithm was configured.
	ErrUnsupportedAlgorithm = errors.New("unsupported password hashing algorithm")
)

// PasswordHasher hashes and verifies passwords.
// Hash and Verify are CPU bound; the number running at once is capped so a
// burst of logins cannot monopolize every processor.
type PasswordHasher struct {
	algorithm string
	cost      int
	slots     *semaphore.Weighted
}

// HasherOption configures a PasswordHasher.
type HasherOption func(*PasswordHasher)

// WithAlgorithm selects the algorithm used for new digests.
func WithAlgorithm(algorithm string) HasherOption {
	return func(h *PasswordHasher) { h.algorithm = algorithm }
}

// WithBcryptCost sets the bcrypt work factor.
func WithBcryptCost(cost int) HasherOption {
	return func(h *PasswordHasher) { h.cost = cost }
}

// WithConcurrency sets how many hash operations may run at once.
func WithConcurrency(n int64) HasherOption {
	return func(h *PasswordHasher) {
		if n > 0 {
			h.slots = semaphore.NewWeighted(n)
		}
	}
}

// NewPasswordHasher creates a hasher. Defaults to bcrypt with cost 12 and
// one concurrent hash per available processor.
func NewPasswordHasher(opts ...HasherOption) (*PasswordHasher, error) {
	h := &PasswordHasher{
		algorithm: AlgorithmBcrypt,
		cost:      DefaultBcryptCost,
		slots:     semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
	for _, opt := range opts {
		opt(h)
	}

	switch h.algorithm {
	case AlgorithmBcrypt:
		if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, h.cost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, h.algorithm)
	}

	return h, nil
}

// Algorithm returns the algorithm used for new digests.
func (h *PasswordHasher) Algorithm() string {
	return h.algorithm
}

// Hash returns a salted one-way digest of password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hashing slot: %w", err)
	}
	defer h.slots.Release(1)

	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(password)
	}

	digest, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches the encoded digest.
// A wrong password yields (false, nil); an error is returned only when the
// digest itself cannot be parsed or the context is cancelled.
// The digest's own prefix selects the algorithm, so digests produced under
// a previous configuration keep verifying.
func (h *PasswordHasher) Verify(ctx context.Context, password, encodedHash string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hashing slot: %w", err)
	}
	defer h.slots.Release(1)

	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return verifyArgon2id(password, encodedHash)
	case strings.HasPrefix(encodedHash, "$2"):
		return verifyBcrypt(password, encodedHash)
	default:
		return false, ErrInvalidHash
	}
}

func verifyBcrypt(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), bcryptInput(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// hashArgon2id encodes the digest in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func hashArgon2id(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}
	if version != argon2.Version {
		return false, ErrIncompatibleVersion
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, ErrInvalidHash
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
