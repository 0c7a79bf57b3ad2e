package auth

import (
	"time"
)

type User struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"not null"`
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasVerifiedEmail() bool {
	return u.EmailVerifiedAt != nil
}

// PasswordResetToken holds the bcrypt hash of an outstanding reset
// token. Email is the primary key, so at most one token is live per
// address at any time.
type PasswordResetToken struct {
	Email     string `gorm:"primaryKey"`
	TokenHash string `gorm:"not null"`
	CreatedAt time.Time
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
