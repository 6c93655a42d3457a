package user

import "time"

// User is an activated account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Bio          string    `json:"bio" gorm:"column:bio"`
	Active       bool      `json:"active" gorm:"column:active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

// UnverifiedUser is a signup awaiting email confirmation. Promotion moves the
// row into users and deletes it here, which is what makes the confirmation
// token single-use.
type UnverifiedUser struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Bio          string    `json:"bio" gorm:"column:bio"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (UnverifiedUser) TableName() string {
	return "unverified_users"
}
