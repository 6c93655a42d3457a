package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/core/events"
	"github.com/adisurya/campushub/internal/group"
	"github.com/adisurya/campushub/internal/notification"
	"golang.org/x/crypto/bcrypt"
)

var ErrUsernameTaken = internal.NewConflictError("username or email already in use", internal.ErrCodeDuplicateName)

// Repository persists accounts. CreateUnverified writes the signup row and
// its confirmation-mail outbox row in one transaction.
type Repository interface {
	CreateUnverified(u *UnverifiedUser, note *notification.Notification) error
	GetUnverifiedByUsername(username string) (*UnverifiedUser, error)
	Promote(username string) (*User, error)
	GetByUsername(username string) (*User, error)
	UsernameTaken(username string) (bool, error)
	EmailTaken(email string) (bool, error)
	SetActive(username string, active bool) error
	Delete(username string) error
	UpdateBio(username, bio string) error
}

// CapabilityChecker is the slice of the permission evaluator user admin
// actions need.
type CapabilityChecker interface {
	HasCapability(username, capability string) (bool, error)
}

type Service struct {
	repo       Repository
	caps       CapabilityChecker
	tokens     *TokenIssuer
	bus        *events.EventBus
	logger     *slog.Logger
	bcryptCost int
	baseURL    string
}

func NewService(repo Repository, caps CapabilityChecker, tokens *TokenIssuer, bus *events.EventBus, logger *slog.Logger, bcryptCost int, baseURL string) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		caps:       caps,
		tokens:     tokens,
		bus:        bus,
		logger:     logger,
		bcryptCost: bcryptCost,
		baseURL:    baseURL,
	}
}

// Signup creates an unverified account and queues the confirmation mail.
// Uniqueness is checked against both the active and the pending pool so a
// username cannot be claimed twice while a confirmation is in flight.
func (s *Service) Signup(dto SignupDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	taken, err := s.repo.UsernameTaken(dto.Username)
	if err != nil {
		return internal.NewInternalError("signup lookup failed", err)
	}
	if !taken {
		taken, err = s.repo.EmailTaken(dto.Email)
		if err != nil {
			return internal.NewInternalError("signup lookup failed", err)
		}
	}
	if taken {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("password hashing failed", err)
	}

	token, err := s.tokens.Issue(dto.Username)
	if err != nil {
		return internal.NewInternalError("token issuance failed", err)
	}

	u := &UnverifiedUser{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Bio:          dto.Bio,
		CreatedAt:    time.Now(),
	}
	note := notification.New(dto.Username,
		"Confirm your account",
		fmt.Sprintf("Welcome! Confirm your account within the hour: %s/confirm?token=%s", s.baseURL, token))

	if err := s.repo.CreateUnverified(u, note); err != nil {
		return internal.NewInternalError("signup failed", err)
	}

	if err := s.bus.Publish(context.Background(), events.NewUserSignedUp(dto.Username, note.ID)); err != nil {
		s.logger.Error("signup event publish failed", "username", dto.Username, "error", err)
	}
	s.logger.Info("signup created", "username", dto.Username)
	return nil
}

// ConfirmEmail promotes a pending signup into an active account. The token
// is rejected after its TTL or once the signup has already been promoted.
func (s *Service) ConfirmEmail(dto ConfirmEmailDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	username, err := s.tokens.Verify(dto.Token)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Promote(username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account confirmed", "username", username)
	return u, nil
}

// GetUser returns a profile. Email is included only for the user themselves
// and for global admins.
func (s *Service) GetUser(requester, username string) (*Profile, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}

	if requester == username {
		p.Email = u.Email
	} else if isAdmin, err := s.caps.HasCapability(requester, group.CapabilityGlobalAdmin); err == nil && isAdmin {
		p.Email = u.Email
	}

	return p, nil
}

func (s *Service) UpdateBio(username string, dto UpdateBioDTO) error {
	if err := s.repo.UpdateBio(username, dto.Bio); err != nil {
		return err
	}
	s.logger.Info("bio updated", "username", username)
	return nil
}

// ModifyUser applies an admin action: activate, deactivate or delete.
func (s *Service) ModifyUser(requester string, dto ModifyUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	isAdmin, err := s.caps.HasCapability(requester, group.CapabilityGlobalAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return internal.ErrNoCapability
	}

	switch dto.Action {
	case ModifyActivate:
		err = s.repo.SetActive(dto.Username, true)
	case ModifyDeactivate:
		err = s.repo.SetActive(dto.Username, false)
	case ModifyDelete:
		err = s.repo.Delete(dto.Username)
	}
	if err != nil {
		return err
	}

	s.logger.Info("user modified", "username", dto.Username, "action", dto.Action, "by", requester)
	return nil
}
