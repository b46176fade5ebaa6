package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted by registration and reset.
const MinPasswordLength = 8

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// NewValidator returns a validator with the console rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return validate
}

// StrongPassword requires the minimum length, an ASCII digit and one of the accepted special characters.
func StrongPassword(password string) bool {
	return len(password) >= MinPasswordLength &&
		strings.ContainsAny(password, "0123456789") &&
		strings.ContainsAny(password, passwordSpecials)
}
