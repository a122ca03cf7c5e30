package utils

import (
	"errors"
	"regexp"
	"strings"
)

// Account field rules. The name length window of 20-60 characters comes
// from the product requirements and is enforced verbatim.
var (
	ErrNameLength      = errors.New("Name must be 20-60 characters.")
	ErrAddressTooLong  = errors.New("Address cannot exceed 400 characters.")
	ErrEmailFormat     = errors.New("Invalid email format.")
	ErrPasswordPattern = errors.New("Password must be 8-16 chars, 1 uppercase, 1 special char.")
)

var (
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*]`)
)

// ValidateName checks the 20-60 character name rule.
func ValidateName(name string) error {
	if n := len(name); n < 20 || n > 60 {
		return ErrNameLength
	}
	return nil
}

// ValidateAddress checks the optional address against the 400 character cap.
func ValidateAddress(address string) error {
	if len(address) > 400 {
		return ErrAddressTooLong
	}
	return nil
}

// ValidateEmail checks basic email shape (something@something.tld).
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}

// ValidatePassword enforces the signup/reset password rule: 8-16
// characters with at least one uppercase letter and one character from
// the fixed special set !@#$%^&*.
func ValidatePassword(password string) error {
	if n := len(password); n < 8 || n > 16 {
		return ErrPasswordPattern
	}
	if !upperRe.MatchString(password) || !specialRe.MatchString(password) {
		return ErrPasswordPattern
	}
	return nil
}

// ValidateAccount runs every account rule and returns the first failure.
// Address is optional; an empty address always passes.
func ValidateAccount(name, email, address, password string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// NormalizeEmail lowercases and trims an email address so lookups and
// uniqueness checks behave consistently.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
