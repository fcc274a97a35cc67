package auth

import (
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"

	"eduvista/site/internal/domain/apperr"
)

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const maxPasswordBytes = 72

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", apperr.Invalid("password must be at most %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if eris.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Invalid("password must be at most %d bytes", maxPasswordBytes)
		}
		return "", eris.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
