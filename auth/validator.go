package auth

import (
	"unicode"
	"wa-gateway/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type KeyRequest struct {
	APIKey string `validate:"required,min=24,max=128"`
}

// ValidateKey rejects keys too weak to be worth hashing.
func ValidateKey(req KeyRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.ErrWeakAPIKey
	}
	if !isKeyComplex(req.APIKey) {
		return errors.ErrWeakAPIKey
	}
	return nil
}

func isKeyComplex(s string) bool {
	var hasLetter, hasNumber bool
	for _, char := range s {
		switch {
		case unicode.IsSpace(char):
			return false
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}
