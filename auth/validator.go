package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type CredentialsRequest struct {
	Name     string `validate:"required,min=3,max=32"`
	Password string `validate:"required,min=8,max=72"`
}

func ValidateCredentials(req CredentialsRequest) error {
	return validate.Struct(req)
}
