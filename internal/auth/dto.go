package auth

import (
	"github.com/adisurya/campushub/internal"
)

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if dto.Username == "" || dto.Password == "" {
		return internal.NewValidationError("username and password are required", internal.ErrCodeValidationFailed)
	}
	return nil
}
