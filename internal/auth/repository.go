package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrResetTokenNotFound = errors.New("password reset token not found")
)

type Repository interface {
	CreateUser(user *User) error
	GetUserByEmail(email string) (*User, error)
	GetUserByID(id uint) (*User, error)
	UpdatePassword(userID uint, passwordHash string) error
	MarkEmailVerified(userID uint, verifiedAt time.Time) error

	SaveResetToken(token *PasswordResetToken) error
	GetResetToken(email string) (*PasswordResetToken, error)
	DeleteResetToken(email string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(user *User) error {
	return r.db.Create(user).Error
}

func (r *repository) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByID(id uint) (*User, error) {
	var user User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdatePassword(userID uint, passwordHash string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

func (r *repository) MarkEmailVerified(userID uint, verifiedAt time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Update("email_verified_at", verifiedAt).Error
}

func (r *repository) SaveResetToken(token *PasswordResetToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", token.Email).Delete(&PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *repository) GetResetToken(email string) (*PasswordResetToken, error) {
	var token PasswordResetToken
	if err := r.db.Where("email = ?", email).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *repository) DeleteResetToken(email string) error {
	return r.db.Where("email = ?", email).Delete(&PasswordResetToken{}).Error
}
