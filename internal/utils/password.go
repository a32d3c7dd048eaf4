package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost pins the bcrypt work factor so hashes stay comparable
// across deployments instead of tracking the library default.
const passwordHashCost = 12

// bcrypt silently truncates input beyond 72 bytes; reject it instead.
const maxPasswordLength = 72

// ErrPasswordTooLong indicates the plaintext exceeds what bcrypt can hash.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
