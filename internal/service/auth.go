// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sqlarena/sqlarena/internal/metrics"
	"github.com/sqlarena/sqlarena/internal/model"
	"github.com/sqlarena/sqlarena/internal/repository"
)

// Service errors. Anything else returned by AuthService is internal.
var (
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("email or password incorrect")
)

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so that path costs about as much as a wrong password.
const dummyPassword = "sqlarena-timing-equalizer"

// UserStore persists users.
type UserStore interface {
	UserExists(ctx context.Context, username, email string) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, digest string) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// RegisterInput is an already validated registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is an already validated login request.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user together with a freshly issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService registers and authenticates users.
type AuthService struct {
	store   UserStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger

	dummyMu     sync.Mutex
	dummyDigest string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, hasher PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
	}
}

// Register creates an account and returns it with a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	res, err := s.register(ctx, input)
	s.metrics.IncRegistration(outcome(err))
	return res, err
}

func (s *AuthService) register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.store.UserExists(ctx, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	digest, err := s.hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: digest,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Another request won the race between the pre-check and the insert.
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks credentials and returns the user with a token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	res, err := s.login(ctx, input)
	s.metrics.IncLogin(outcome(err))
	return res, err
}

func (s *AuthService) login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burnVerify(ctx, input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.verify(ctx, input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) hash(ctx context.Context, password string) (string, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.hasher.Hash(ctx, password)
}

func (s *AuthService) verify(ctx context.Context, password, digest string) (bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.hasher.Verify(ctx, password, digest)
}

// burnVerify runs a verification whose result is discarded.
func (s *AuthService) burnVerify(ctx context.Context, password string) {
	digest, err := s.dummy(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to prepare dummy digest", slog.String("error", err.Error()))
		return
	}
	_, _ = s.verify(ctx, password, digest)
}

func (s *AuthService) dummy(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyDigest != "" {
		return s.dummyDigest, nil
	}

	digest, err := s.hasher.Hash(ctx, dummyPassword)
	if err != nil {
		return "", err
	}
	s.dummyDigest = digest
	return digest, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUserExists):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrInvalidCredentials):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
