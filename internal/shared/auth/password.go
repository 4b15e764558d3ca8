package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt operates on at most 72 bytes of input.
const maxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("password is required")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// HashPassword returns a salted one-way hash of the password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the password matches the stored hash.
// Malformed hashes verify false rather than erroring.
func VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
