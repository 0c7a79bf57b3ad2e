package auth

import (
	"sync"
	"time"
)

type mockRepository struct {
	users        map[uint]*User
	usersByEmail map[string]*User
	resetTokens  map[string]*PasswordResetToken
	nextID       uint
	mu           sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:        make(map[uint]*User),
		usersByEmail: make(map[string]*User),
		resetTokens:  make(map[string]*PasswordResetToken),
		nextID:       1,
	}
}

func (r *mockRepository) CreateUser(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return ErrUserExists
	}

	// Clone the user to prevent external modifications
	newUser := &User{
		ID:              r.nextID,
		Name:            user.Name,
		Email:           user.Email,
		PasswordHash:    user.PasswordHash,
		EmailVerifiedAt: user.EmailVerifiedAt,
		CreatedAt:       time.Now(),
	}
	r.nextID++

	r.users[newUser.ID] = newUser
	r.usersByEmail[newUser.Email] = newUser
	user.ID = newUser.ID
	return nil
}

func (r *mockRepository) GetUserByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) GetUserByID(id uint) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) UpdatePassword(userID uint, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *mockRepository) MarkEmailVerified(userID uint, verifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return ErrUserNotFound
	}
	user.EmailVerifiedAt = &verifiedAt
	return nil
}

func (r *mockRepository) SaveResetToken(token *PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *token
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	r.resetTokens[token.Email] = &clone
	return nil
}

func (r *mockRepository) GetResetToken(email string) (*PasswordResetToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, exists := r.resetTokens[email]
	if !exists {
		return nil, ErrResetTokenNotFound
	}
	clone := *token
	return &clone, nil
}

func (r *mockRepository) DeleteResetToken(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.resetTokens, email)
	return nil
}
