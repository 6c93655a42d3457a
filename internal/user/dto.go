package user

import (
	"regexp"

	"github.com/adisurya/campushub/internal"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type SignupDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

func (d *SignupDTO) Validate() error {
	if d.Username == "" || !usernamePattern.MatchString(d.Username) {
		return internal.NewValidationError("username may only contain letters, digits and underscores", internal.ErrCodeInvalidUsername)
	}
	if len(d.Username) > 50 {
		return internal.NewValidationError("username is too long", internal.ErrCodeNameTooLong)
	}
	if !emailPattern.MatchString(d.Email) {
		return internal.NewValidationError("email address is invalid", internal.ErrCodeInvalidEmail)
	}
	if len(d.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ConfirmEmailDTO struct {
	Token string `json:"token"`
}

func (d *ConfirmEmailDTO) Validate() error {
	if d.Token == "" {
		return internal.NewValidationError("token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ModifyAction names one admin mutation on a user account.
type ModifyAction string

const (
	ModifyActivate   ModifyAction = "activate"
	ModifyDeactivate ModifyAction = "deactivate"
	ModifyDelete     ModifyAction = "delete"
)

type ModifyUserDTO struct {
	Username string       `json:"username"`
	Action   ModifyAction `json:"action"`
}

func (d *ModifyUserDTO) Validate() error {
	if d.Username == "" {
		return internal.NewValidationError("username is required", internal.ErrCodeValidationFailed)
	}
	switch d.Action {
	case ModifyActivate, ModifyDeactivate, ModifyDelete:
		return nil
	}
	return internal.NewValidationError("invalid action", internal.ErrCodeInvalidAction)
}

type UpdateBioDTO struct {
	Bio string `json:"bio"`
}

// Profile is the caller-visible projection of a user.
type Profile struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Bio       string `json:"bio"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}
