package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/dkonate/ecolia/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdMinLen = 8
	pwdTag    = "password"
	pwdText   = fmt.Sprintf(
		"password must contain at least %d characters, no whitespace, and cannot be entirely numeric", pwdMinLen)

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)

	_ = core.Validate.RegisterValidation(pwdTag, passwordValidation)
	core.RegisterCustomTranslation(pwdTag, pwdText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)

	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
}

func roleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// passwordValidation enforces the base password policy:
// - min length
// - no whitespace
// - not entirely numeric
func passwordValidation(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if len(pwd) < pwdMinLen {
		return false
	}
	digitCount := 0
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return false
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	return digitCount != len(pwd)
}

// newUserStructValidation rejects passwords too similar to the user's own
// attributes.
func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	if nu.Password == "" {
		return
	}
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(nu.Password, nu.Username) >= pwdMaxSim ||
		getRatio(nu.Password, nu.LastName) >= pwdMaxSim ||
		getRatio(nu.Password, nu.FirstName) >= pwdMaxSim {
		sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
	}
}
