package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/adityabp/miniblog/internal/config"
)

var (
	// ErrInvalidCredentials never reveals which of email or password
	// was wrong.
	ErrInvalidCredentials = errors.New("these credentials do not match our records")
	ErrInvalidResetToken  = errors.New("this password reset token is invalid")
	ErrAlreadyVerified    = errors.New("email address is already verified")
)

// ThrottledError is returned when the login limiter denies an attempt.
// RetryIn is the remainder of the decay window.
type ThrottledError struct {
	RetryIn time.Duration
}

func (e *ThrottledError) Error() string {
	seconds := int(e.RetryIn.Round(time.Second).Seconds())
	return fmt.Sprintf("too many login attempts, please try again in %d seconds", seconds)
}

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	limiter    AttemptLimiter
	links      *LinkSigner
	notifier   Notifier
}

func NewService(
	config *config.AuthConfig,
	log *zap.Logger,
	repo Repository,
	limiter AttemptLimiter,
	links *LinkSigner,
	notifier Notifier,
) *Service {
	return &Service{
		config:     config,
		log:        log,
		repository: repo,
		limiter:    limiter,
		links:      links,
		notifier:   notifier,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (s *Service) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Attempt validates credentials for a login request. The limiter is
// consulted before the credential store; while the key is throttled no
// credential check happens at all. Failed checks hit the counter, a
// successful login clears it.
func (s *Service) Attempt(ctx context.Context, email, password, ip string) (*User, error) {
	key := LoginKey(ip)

	throttled, err := s.limiter.TooManyAttempts(ctx, key)
	if err != nil {
		return nil, err
	}
	if throttled {
		retryIn, err := s.limiter.AvailableIn(ctx, key)
		if err != nil {
			return nil, err
		}
		return nil, &ThrottledError{RetryIn: retryIn}
	}

	user, err := s.repository.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.HashPassword("dummy") // Prevent timing attacks
			s.recordFailure(ctx, key)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.CheckPasswordHash(password, user.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	// Clear the failed-attempt counter so one mistyped password does
	// not keep penalizing the key after a successful login.
	if err := s.limiter.Clear(ctx, key); err != nil {
		s.log.Error("failed to clear login attempts", zap.Error(err))
	}

	return user, nil
}

func (s *Service) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.Hit(ctx, key); err != nil {
		s.log.Error("failed to record login attempt", zap.Error(err))
	}
}

// Register creates the user record and dispatches the verification
// link. Input validation happens at the handler; uniqueness is also
// enforced here by the store.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.repository.CreateUser(user); err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.log.Error("failed to send verification link", zap.Error(err))
	}

	return user, nil
}

// SendPasswordResetLink issues a reset token for a registered address.
// Only the bcrypt hash of the token is stored; the raw token goes out
// through the notifier.
func (s *Service) SendPasswordResetLink(ctx context.Context, email string) error {
	user, err := s.repository.GetUserByEmail(email)
	if err != nil {
		return err
	}

	token := uuid.NewString()
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	record := &PasswordResetToken{
		Email:     user.Email,
		TokenHash: string(tokenHash),
		CreatedAt: time.Now(),
	}
	if err := s.repository.SaveResetToken(record); err != nil {
		return err
	}

	return s.notifier.SendPasswordReset(ctx, user, token)
}

// ResetPassword consumes a reset token. Invalid or expired tokens fail
// without touching the user record.
func (s *Service) ResetPassword(ctx context.Context, email, token, password string) error {
	record, err := s.repository.GetResetToken(email)
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if time.Since(record.CreatedAt) > s.config.ResetTokenTTL {
		return ErrInvalidResetToken
	}

	if bcrypt.CompareHashAndPassword([]byte(record.TokenHash), []byte(token)) != nil {
		return ErrInvalidResetToken
	}

	user, err := s.repository.GetUserByEmail(email)
	if err != nil {
		return err
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.repository.UpdatePassword(user.ID, hashedPassword); err != nil {
		return err
	}

	// The token is single-use.
	if err := s.repository.DeleteResetToken(email); err != nil {
		s.log.Error("failed to delete consumed reset token", zap.Error(err))
	}

	return nil
}

// VerifyEmail validates a signed link opened by user and marks the
// address verified. Returns true when the address was already verified
// and nothing was reprocessed.
func (s *Service) VerifyEmail(ctx context.Context, user *User, id, hash, signed string) (bool, error) {
	if err := s.links.Verify(signed, id, hash, user); err != nil {
		return false, err
	}

	if user.HasVerifiedEmail() {
		return true, nil
	}

	if err := s.repository.MarkEmailVerified(user.ID, time.Now()); err != nil {
		return false, err
	}

	return false, nil
}

// ResendVerification dispatches a fresh link for an unverified user.
func (s *Service) ResendVerification(ctx context.Context, user *User) error {
	if user.HasVerifiedEmail() {
		return ErrAlreadyVerified
	}
	return s.sendVerification(ctx, user)
}

func (s *Service) sendVerification(ctx context.Context, user *User) error {
	url, err := s.links.URL(user)
	if err != nil {
		return err
	}
	return s.notifier.SendEmailVerification(ctx, user, url)
}
