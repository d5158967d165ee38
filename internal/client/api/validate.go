package api

import (
	"regexp"
	"strings"
)

// emailPattern accepts the usual local@domain.tld shape. It is a client
// courtesy check, not an RFC parser; the server has the final word.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

const (
	msgMissingFields    = "All fields are required."
	msgPasswordMismatch = "Passwords do not match."
	msgWeakPassword     = "Password must be at least 6 characters."
	msgInvalidEmail     = "Please enter a valid email address."
)

const minPasswordLength = 6

// normalizeEmail trims surrounding whitespace and lowercases the address
// before validation and transmission.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateSignup runs the client-side checks in their fixed order; the
// first failing check wins and no network call follows.
func validateSignup(email, password, confirmPassword string) *Error {
	if email == "" || password == "" || confirmPassword == "" {
		return newError(KindMissingFields, msgMissingFields)
	}
	if password != confirmPassword {
		return newError(KindPasswordMismatch, msgPasswordMismatch)
	}
	if len(password) < minPasswordLength {
		return newError(KindWeakPassword, msgWeakPassword)
	}
	if !emailPattern.MatchString(email) {
		return newError(KindInvalidEmail, msgInvalidEmail)
	}
	return nil
}

// validateSignin checks presence and email shape only; existing accounts
// may carry any historical password, so no strength check here.
func validateSignin(email, password string) *Error {
	if email == "" || password == "" {
		return newError(KindMissingFields, msgMissingFields)
	}
	if !emailPattern.MatchString(email) {
		return newError(KindInvalidEmail, msgInvalidEmail)
	}
	return nil
}
