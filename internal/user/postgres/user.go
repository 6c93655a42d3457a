package postgres

import (
	"errors"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/notification"
	"github.com/adisurya/campushub/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements user.Repository, and doubles as the credentials
// source for login (auth.CredentialsRepository) and the username-to-email
// directory for notification delivery (notification.Directory).
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUnverified writes the signup row and its confirmation-mail outbox
// row atomically; note.ID is populated on return.
func (r *UserRepository) CreateUnverified(u *user.UnverifiedUser, note *notification.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(note).Error
	})
}

func (r *UserRepository) GetUnverifiedByUsername(username string) (*user.UnverifiedUser, error) {
	var u user.UnverifiedUser
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Promote moves a pending signup into users and removes the pending row in
// one transaction. A second promotion attempt finds no row and fails, which
// is what makes confirmation single-use.
func (r *UserRepository) Promote(username string) (*user.User, error) {
	var promoted *user.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pending user.UnverifiedUser
		if err := tx.Where("username = ?", username).First(&pending).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user.ErrTokenInvalid
			}
			return err
		}

		u := &user.User{
			Username:     pending.Username,
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
			Bio:          pending.Bio,
			Active:       true,
			CreatedAt:    time.Now(),
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if err := tx.Delete(&pending).Error; err != nil {
			return err
		}
		promoted = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var u user.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UsernameTaken checks both the active and the pending pool.
func (r *UserRepository) UsernameTaken(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&user.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.Model(&user.UnverifiedUser{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) EmailTaken(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&user.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.Model(&user.UnverifiedUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) SetActive(username string, active bool) error {
	res := r.db.Model(&user.User{}).Where("username = ?", username).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(username string) error {
	res := r.db.Where("username = ?", username).Delete(&user.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateBio(username, bio string) error {
	res := r.db.Model(&user.User{}).Where("username = ?", username).Update("bio", bio)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// ---- auth.CredentialsRepository ----

func (r *UserRepository) GetCredentials(username string) (string, bool, error) {
	u, err := r.GetByUsername(username)
	if err != nil {
		return "", false, err
	}
	return u.PasswordHash, u.Active, nil
}

func (r *UserRepository) HasPendingSignup(username string) (bool, error) {
	var count int64
	err := r.db.Model(&user.UnverifiedUser{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ---- notification.Directory ----

// GetEmailForUsername also consults the pending pool so confirmation mail
// can reach accounts that are not yet promoted.
func (r *UserRepository) GetEmailForUsername(username string) (string, error) {
	var u user.User
	err := r.db.Select("email").Where("username = ?", username).First(&u).Error
	if err == nil {
		return u.Email, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var pending user.UnverifiedUser
	err = r.db.Select("email").Where("username = ?", username).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notification.ErrRecipientUnknown
		}
		return "", err
	}
	return pending.Email, nil
}
