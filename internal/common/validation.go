package common

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return InvalidArg("email is required")
	}
	if !emailRegex.MatchString(email) {
		return InvalidArg("invalid email format")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return InvalidArg("password must be at least 6 characters long")
	}
	if len(password) > 100 {
		return InvalidArg("password is too long")
	}
	return nil
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 {
		return InvalidArg("name must be between 2 and 100 characters")
	}
	return nil
}
