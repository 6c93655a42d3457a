package auth

import (
	"context"
	"log/slog"

	"github.com/adisurya/campushub/internal"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserDeactivated = internal.NewForbiddenError("account is deactivated", internal.ErrCodeUserDeactivated)

// CredentialsRepository is the slice of user storage login needs.
type CredentialsRepository interface {
	// GetCredentials returns the stored bcrypt hash and activity flag, or
	// internal.ErrUserNotFound.
	GetCredentials(username string) (passwordHash string, active bool, err error)
	// HasPendingSignup reports whether the username sits in the
	// unverified pool awaiting email confirmation.
	HasPendingSignup(username string) (bool, error)
}

type Service struct {
	users    CredentialsRepository
	sessions SessionStore
	logger   *slog.Logger
}

func NewService(users CredentialsRepository, sessions SessionStore, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Login verifies credentials and opens a session. Unknown users, pending
// signups, deactivated accounts and wrong passwords all fail distinctly.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	hash, active, err := s.users.GetCredentials(dto.Username)
	if err != nil {
		pending, pendErr := s.users.HasPendingSignup(dto.Username)
		if pendErr == nil && pending {
			return "", internal.ErrUserUnverified
		}
		return "", internal.ErrUserNotFound
	}

	if !active {
		return "", ErrUserDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected", "username", dto.Username)
		return "", internal.ErrBadCredentials
	}

	token, err := s.sessions.Create(ctx, dto.Username)
	if err != nil {
		return "", err
	}

	s.logger.Info("login ok", "username", dto.Username)
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Resolve maps a session token to a username, refreshing the inactivity
// window. This is the identity resolver every authenticated call goes
// through.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", internal.ErrUnauthenticated
	}
	return s.sessions.Resolve(ctx, token)
}
