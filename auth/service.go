package auth

import (
	"context"
	"errors"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/models"
	"github.com/lagat24/greentrace/store"
)

// UserStore is the slice of the persistence layer the auth service needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (models.User, error)
	ByEmail(ctx context.Context, email string) (models.User, error)
}

// Service orchestrates signup and login: validate, hash, persist, issue
// token. Every call is a stateless request/response pair; retries are the
// caller's problem.
type Service struct {
	users  UserStore
	hasher *PasswordHasher
	issuer *TokenIssuer
}

// NewService wires the auth service. All state is read-only after
// construction, so the service is safe for concurrent use.
func NewService(users UserStore, hasher *PasswordHasher, issuer *TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, issuer: issuer}
}

// Signup registers a new user and mints a session token for the created id.
//
// Errors:
//   - ErrValidation when any field is empty
//   - *store.DuplicateFieldError when email or username is taken
//   - store.ErrForeignKey / store.ErrFieldTooLong passed through
//   - anything else wrapped for the handler to treat as internal
func (s *Service) Signup(ctx context.Context, username, email, password string) (models.AuthResponse, error) {
	if username == "" || email == "" || password == "" {
		return models.AuthResponse{}, ErrValidation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		logger.Error("Password hashing failed", zap.Error(err))
		return models.AuthResponse{}, err
	}

	user, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		var dup *store.DuplicateFieldError
		if !errors.As(err, &dup) && !errors.Is(err, store.ErrForeignKey) && !errors.Is(err, store.ErrFieldTooLong) {
			logger.Error("User creation failed", zap.Error(err), zap.String("email", email))
		}
		return models.AuthResponse{}, err
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		logger.Error("Token issuance failed", zap.Error(err), zap.Int("user_id", user.ID))
		return models.AuthResponse{}, err
	}

	return models.AuthResponse{Token: token, User: user.View()}, nil
}

// Login authenticates by email and password. A missing user and a wrong
// password both return ErrInvalidCredentials; nothing distinguishes them.
func (s *Service) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.AuthResponse{}, ErrInvalidCredentials
		}
		logger.Error("User lookup failed", zap.Error(err))
		return models.AuthResponse{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		logger.Error("Token issuance failed", zap.Error(err), zap.Int("user_id", user.ID))
		return models.AuthResponse{}, err
	}

	return models.AuthResponse{Token: token, User: user.View()}, nil
}

// ParseToken validates a bearer token and returns the user id it encodes.
func (s *Service) ParseToken(tokenString string) (int, error) {
	return s.issuer.Parse(tokenString)
}
