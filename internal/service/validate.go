package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"usdrop-admin/internal/domain"
	"usdrop-admin/pkg/utils"
)

// validate reads the same `binding` tags gin checks on bind, so inputs that reach
// the service without going through HTTP get identical rules.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}()

// Input is a request body whose binding failures have caller-facing messages.
type Input interface {
	invalidMessage(errs validator.ValidationErrors) string
}

// MessageFor turns a bind or validation error for in into the 400 message.
func MessageFor(in Input, err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return in.invalidMessage(errs)
	}
	return FriendlyAuthMessage(err.Error(), "Invalid request body")
}

func checkInput(in Input) error {
	if err := validate.Struct(in); err != nil {
		return domain.Invalid(MessageFor(in, err))
	}
	return nil
}

// checkPasswordBytes catches multi-byte passwords the rune-counting max tag lets
// through; bcrypt refuses anything past 72 bytes.
func checkPasswordBytes(password string) error {
	if len(password) > utils.MaxPasswordBytes {
		return domain.Invalid(msgPasswordTooLong)
	}
	return nil
}

const (
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgPasswordTooLong  = "Password must be at most 72 bytes long"
	msgInvalidEmail     = "Please enter a valid email address"
	msgInvalidRole      = "Invalid role. Must be client, admin, or owner"
	msgInvalidPlan      = "Invalid plan. Must be free, pro, or enterprise"
)

func failed(errs validator.ValidationErrors, field, tag string) bool {
	for _, fe := range errs {
		if fe.Field() == field && (tag == "" || fe.Tag() == tag) {
			return true
		}
	}
	return false
}

func anyTag(errs validator.ValidationErrors, tag string) bool {
	for _, fe := range errs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

func passwordMessage(errs validator.ValidationErrors) (string, bool) {
	switch {
	case failed(errs, "Password", "min"):
		return msgPasswordTooShort, true
	case failed(errs, "Password", "max"):
		return msgPasswordTooLong, true
	}
	return "", false
}

func (SignUpInput) invalidMessage(errs validator.ValidationErrors) string {
	emailMissing, passwordMissing := failed(errs, "Email", "required"), failed(errs, "Password", "required")
	switch {
	case emailMissing && passwordMissing:
		return "Email and password are required"
	case emailMissing:
		return "Email is required"
	case passwordMissing:
		return "Password is required"
	case failed(errs, "Email", ""):
		return msgInvalidEmail
	}
	if msg, ok := passwordMessage(errs); ok {
		return msg
	}
	return FriendlyAuthMessage(errs.Error(), "Invalid request body")
}

func (SignInInput) invalidMessage(errs validator.ValidationErrors) string {
	switch {
	case anyTag(errs, "required"):
		return "Email and password are required"
	case failed(errs, "Email", ""):
		return msgInvalidEmail
	case failed(errs, "Password", "max"):
		return msgPasswordTooLong
	}
	return FriendlyAuthMessage(errs.Error(), "Invalid request body")
}

func (CreateUserInput) invalidMessage(errs validator.ValidationErrors) string {
	switch {
	case anyTag(errs, "required"):
		return "Missing required fields: email, password, full_name, role_id, plan"
	case failed(errs, "Email", ""):
		return msgInvalidEmail
	case failed(errs, "Role", ""):
		return msgInvalidRole
	case failed(errs, "Plan", ""):
		return msgInvalidPlan
	}
	if msg, ok := passwordMessage(errs); ok {
		return msg
	}
	return "Invalid request body"
}

func (UpdateRoleInput) invalidMessage(errs validator.ValidationErrors) string {
	switch {
	case anyTag(errs, "required"):
		return "User ID and new role are required"
	case failed(errs, "NewRole", ""):
		return msgInvalidRole
	}
	return "Invalid request body"
}
