package auth

import (
	"errors"
	"strings"
	"unicode"
)

// ValidatePassword enforces the registration strength policy: at least
// 8 characters with upper, lower, digit and special characters and no
// whitespace. Returns nil when every rule holds.
func ValidatePassword(password string) error {
	switch {
	case len(password) < 8:
		return errors.New("the password must be at least 8 characters")
	case strings.ContainsFunc(password, unicode.IsSpace):
		return errors.New("the password must not contain spaces")
	case !strings.ContainsFunc(password, unicode.IsUpper):
		return errors.New("the password must contain at least one uppercase letter")
	case !strings.ContainsFunc(password, unicode.IsLower):
		return errors.New("the password must contain at least one lowercase letter")
	case !strings.ContainsFunc(password, unicode.IsDigit):
		return errors.New("the password must contain at least one number")
	case !strings.ContainsFunc(password, isSpecial):
		return errors.New("the password must contain at least one special character")
	}
	return nil
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
