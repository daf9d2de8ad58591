// Package validation enforces account field rules with go-playground/validator.
//
// The same Validator backs the domain port (ports.AccountValidator) and Echo's
// request validation (echo.Validator), so messages are consistent across both.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/proxygate/accounts/internal/core/domain"
)

const (
	tagLooseEmail  = "looseemail"
	tagPasswordLen = "passwordlen"
)

// emailPattern accepts anything shaped like something@something.something.
var emailPattern = regexp.MustCompile(`.+@.+\..+`)

// Validator wraps go-playground/validator with the account rules registered.
type Validator struct {
	v      *validator.Validate
	policy domain.PasswordPolicy
}

// New returns a Validator applying policy's creation length rule. It panics
// if a custom tag cannot be registered.
func New(policy domain.PasswordPolicy) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	mustRegister(v, tagLooseEmail, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, tagPasswordLen, func(fl validator.FieldLevel) bool {
		return policy.AcceptsNew(fl.Field().String())
	})
	return &Validator{v: v, policy: policy}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

type newAccountRules struct {
	Username string        `json:"username" validate:"required"`
	Email    string        `json:"email" validate:"required,looseemail"`
	Password string        `json:"password" validate:"passwordlen"`
	Roles    []domain.Role `json:"roles" validate:"dive,oneof=user admin"`
}

// ValidateNew checks a creation request.
func (val *Validator) ValidateNew(in domain.NewAccountInput) error {
	rules := newAccountRules{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Roles:    in.Roles,
	}

	verr := domain.NewValidationError()
	if err := val.v.Struct(rules); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			field := baseField(fe.Field())
			verr.Add(field, val.message(field, fe.Tag(), fe.Param()))
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// ValidatePatch checks only the fields present in patch.
func (val *Validator) ValidatePatch(patch domain.AccountPatch) error {
	verr := domain.NewValidationError()

	if patch.Email != nil {
		val.checkVar(verr, "email", *patch.Email, "required,"+tagLooseEmail)
	}
	if patch.Password != nil {
		val.checkVar(verr, "password", *patch.Password, tagPasswordLen)
	}
	if patch.Roles != nil {
		if len(patch.Roles) == 0 {
			verr.Add("roles", "roles must not be empty")
		}
		val.checkVar(verr, "roles", patch.Roles, "dive,oneof=user admin")
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

// Validate satisfies the echo.Validator interface for request payloads.
func (val *Validator) Validate(i any) error {
	if err := val.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			verr := domain.NewValidationError()
			for _, fe := range ve {
				field := baseField(fe.Field())
				verr.Add(field, val.message(field, fe.Tag(), fe.Param()))
			}
			return verr
		}
		return err
	}
	return nil
}

func (val *Validator) checkVar(verr *domain.ValidationError, field string, value any, tags string) {
	err := val.v.Var(value, tags)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		verr.Add(field, val.message(field, ve[0].Tag(), ve[0].Param()))
		return
	}
	verr.Add(field, err.Error())
}

// message converts a failed rule into the text shown to the caller.
func (val *Validator) message(field, tag, param string) string {
	switch {
	case field == "username" && tag == "required":
		return "Please enter a username"
	case field == "email" && tag == "required":
		return "Please enter your email address"
	case tag == tagLooseEmail:
		return "Please enter a valid email address"
	case tag == tagPasswordLen:
		return fmt.Sprintf(domain.MessagePasswordTooShortTmpl, val.policy.MinPasswordLength)
	}

	switch tag {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, tag)
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// baseField strips slice indexes: "roles[1]" becomes "roles".
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
