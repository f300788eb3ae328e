package service

import (
	"fmt"
	"strings"
	"unicode"
)

const minPasswordLength = 8

// ValidatePassword enforces the credential-strength policy: minimum length
// plus at least one upper-case letter, one lower-case letter, one digit and
// one symbol. Every violation wraps ErrWeakPassword with an actionable
// message.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an upper-case letter")
	}
	if !hasLower {
		missing = append(missing, "a lower-case letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSymbol {
		missing = append(missing, "a symbol")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: must contain %s", ErrWeakPassword, strings.Join(missing, ", "))
	}

	return nil
}
