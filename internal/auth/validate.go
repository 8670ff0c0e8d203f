package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// emailPattern accepts anything shaped like a@b.c.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// rule maps a failed field/tag pair to a message. Rules are checked in
// order, so the first listed failure is the one reported.
type rule struct {
	field, tag, msg string
}

func check(v any, rules []rule) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()+"."+fe.Tag()] = true
	}
	for _, r := range rules {
		if failed[r.field+"."+r.tag] {
			return apperr.New(apperr.Validation, r.msg)
		}
	}
	return apperr.New(apperr.Validation, verrs[0].Error())
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type signInInput struct {
	Email    string `validate:"required,looseemail"`
	Password string `validate:"required"`
}

var signInRules = []rule{
	{"Email", "required", MsgFillAllFields},
	{"Password", "required", MsgFillAllFields},
	{"Email", "looseemail", MsgInvalidEmail},
}

type signUpInput struct {
	Password string `validate:"min=6"`
	Name     string `validate:"required"`
	Email    string `validate:"required,looseemail"`
	Role     string `validate:"oneof=customer vendor"`
}

var signUpRules = []rule{
	{"Password", "min", MsgPasswordTooShort},
	{"Name", "required", MsgNameRequired},
	{"Email", "required", MsgInvalidEmail},
	{"Email", "looseemail", MsgInvalidEmail},
	{"Role", "oneof", MsgInvalidRole},
}

// SignUpForm is what the register screen collects.
type SignUpForm struct {
	Name            string `validate:"required,min=2"`
	Email           string `validate:"required,looseemail"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Role            domain.Role
}

var signUpFormRules = []rule{
	{"Name", "required", MsgFillAllFields},
	{"Email", "required", MsgFillAllFields},
	{"Password", "required", MsgFillAllFields},
	{"ConfirmPassword", "required", MsgFillAllFields},
	{"Email", "looseemail", MsgInvalidEmail},
	{"Password", "min", MsgPasswordTooShort},
	{"ConfirmPassword", "eqfield", MsgPasswordsDiffer},
	{"Name", "min", MsgNameTooShort},
}

// ValidateSignUp runs the register screen checks: every field filled, a
// plausible email, a long enough password typed twice, and a name of at
// least two characters.
func ValidateSignUp(f SignUpForm) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	if err := check(f, signUpFormRules); err != nil {
		return err
	}
	if !domain.ValidRole(f.Role) {
		return apperr.New(apperr.Validation, MsgInvalidRole)
	}
	return nil
}

type resetRequestInput struct {
	Email string `validate:"required,looseemail"`
}

var resetRequestRules = []rule{
	{"Email", "required", MsgEnterEmail},
	{"Email", "looseemail", MsgInvalidEmail},
}

type newPasswordInput struct {
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

var newPasswordRules = []rule{
	{"Password", "required", MsgFillAllFields},
	{"Confirm", "required", MsgFillAllFields},
	{"Password", "min", MsgPasswordTooShort},
	{"Confirm", "eqfield", MsgPasswordsDiffer},
}
