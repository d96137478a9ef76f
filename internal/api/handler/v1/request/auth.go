package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// passwordPattern needs lookahead, which the standard regexp package
// does not support.
const passwordPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var (
	passwordRegex = regexp2.MustCompile(passwordPattern, regexp2.None)

	errInvalidPassword = errors.New("the password must be at least 8 characters and contain a letter and a number")
)

func validatePassword(password string) error {
	ok, err := passwordRegex.MatchString(password)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	City     string `json:"city"`
	Level    string `json:"level"`
	Bio      string `json:"bio"`
}

func (req *RegisterRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.Length(3, 30)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.City, validation.Length(0, 100)),
		validation.Field(&req.Level, validation.In("beginner", "intermediate", "advanced")),
		validation.Field(&req.Bio, validation.Length(0, 500)),
	)
	if err != nil {
		return err
	}

	return validatePassword(req.Password)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (req *ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (req *ResetPasswordRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
	if err != nil {
		return err
	}

	return validatePassword(req.Password)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (req *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.Required, validation.In("user", "admin")),
	)
}
