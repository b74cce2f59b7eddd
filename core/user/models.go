package user

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/storage/record"
)

// Roles
const (
	RoleAdmin     = "Admin"
	RoleSecretary = "Secrétaire"
	RoleTeacher   = "Enseignant"
)

var AllRoles = []string{RoleAdmin, RoleSecretary, RoleTeacher}

// User replaces the legacy cleartext password map: credentials live on the
// record as a salted bcrypt hash. The store document is local and private,
// it never crosses a network boundary.
type User struct {
	record.Meta
	LastName     string `json:"lastName"`
	FirstName    string `json:"firstName"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	IsActive     bool   `json:"isActive"`
	PasswordHash []byte `json:"passwordHash,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NewUser contains information needed to create a new User.
type NewUser struct {
	LastName        string `json:"lastName" validate:"required"`
	FirstName       string `json:"firstName" validate:"required"`
	Username        string `json:"username" validate:"required,min=4,alphanum_"`
	Role            string `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required,password"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.LastName = core.CleanString(nu.LastName)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.Username = core.CleanString(nu.Username, true /* lower */)

	if err := core.TranslateValidationError(core.Validate.Struct(nu)); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Username)
}

// PasswordChange defines what is needed to change a user's password.
type PasswordChange struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,password"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (pc *PasswordChange) Validate() error {
	pc.Username = core.CleanString(pc.Username, true /* lower */)
	return core.TranslateValidationError(core.Validate.Struct(pc))
}
