// AngelaMos | 2026
// validate.go

package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ReservedUsername is the self-service alias; no account may claim it.
const ReservedUsername = "me"

// NewValidator returns a validator with the domain rules registered:
// "username" (allow-listed character class, reserved alias rejected)
// and "slug".
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	for name, fn := range map[string]validator.Func{
		"username": validUsername,
		"slug":     validSlug,
	} {
		if err := v.RegisterValidation(name, fn); err != nil {
			panic(fmt.Sprintf("register %q validation: %v", name, err))
		}
	}

	return v
}

func validUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.EqualFold(value, ReservedUsername) {
		return false
	}
	return usernameRe.MatchString(value)
}

func validSlug(fl validator.FieldLevel) bool {
	return slugRe.MatchString(fl.Field().String())
}
