package user

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/dkonate/ecolia/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrUsernameExists       = errors.New("a user with this username already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrInvalidToken         = errors.New("invalid session token")
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		CreateUser(User) (User, error)
		AllUsers() ([]User, error)
		GetUserByID(id string) (User, bool, error)
		GetUserByUsername(username string) (User, bool, error)
		UpdateUser(id string, mutate func(*User)) (User, bool, error)
		DeleteUser(id string) (bool, error)
	}

	// AuditTrail records user-visible mutations; nil disables auditing.
	AuditTrail interface {
		Record(user, action, details string)
	}

	Service struct {
		repo      Repository
		secretKey []byte
		expiry    time.Duration
		audit     AuditTrail
	}
)

// Claims represents the session claims transmitted via a signed token.
type Claims struct {
	jwt.StandardClaims
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

func NewService(repo Repository, conf *core.Config, audit AuditTrail) *Service {
	return &Service{
		repo:      repo,
		secretKey: []byte(conf.SecretKey),
		expiry:    conf.SessionExpirationDelta,
		audit:     audit,
	}
}

func (svc *Service) checkUniqueness(uname string) error {
	_, ok, err := svc.repo.GetUserByUsername(uname)
	if err != nil {
		return err
	}
	if ok {
		return core.NewValidationError(ErrUsernameExists,
			core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return nil
}

func (svc *Service) Create(nu NewUser) (User, error) {
	if err := nu.Validate(svc); err != nil {
		return User{}, err
	}
	usr := User{
		LastName:  nu.LastName,
		FirstName: nu.FirstName,
		Username:  nu.Username,
		Role:      nu.Role,
		IsActive:  true,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	usr, ok, err := svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return usr, nil
}

// Login authenticates a user and returns a signed session token. Unknown
// usernames and bad passwords are indistinguishable to the caller.
func (svc *Service) Login(uname, pwd string) (string, User, error) {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return "", User{}, ErrAuthenticationFailed
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return "", User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return "", User{}, ErrAccountDeactivated
	}

	now := NowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.ID,
			ExpiresAt: now.Add(svc.expiry).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:    usr.Role,
		IsAdmin: usr.IsAdmin(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secretKey)
	if err != nil {
		return "", User{}, err
	}

	if svc.audit != nil {
		svc.audit.Record(usr.Username, "connexion", "")
	}
	return token, usr, nil
}

// CurrentUser resolves a session token back to its user, re-checking the
// active flag so a deactivation takes effect on the next call.
func (svc *Service) CurrentUser(token string) (User, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return svc.secretKey, nil
	})
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidToken
	}
	usr, ok, err := svc.repo.GetUserByID(claims.Subject)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return usr, nil
}

// Logout only audits; session tokens are stateless and discarded client-side.
func (svc *Service) Logout(token string) {
	if svc.audit == nil {
		return
	}
	if usr, err := svc.CurrentUser(token); err == nil {
		svc.audit.Record(usr.Username, "déconnexion", "")
	}
}

// ChangePassword swaps a user's credential after re-validating the policy.
func (svc *Service) ChangePassword(pc PasswordChange) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	usr, err := svc.GetByUsername(pc.Username)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pc.Password); err != nil {
		return err
	}
	_, _, err = svc.repo.UpdateUser(usr.ID, func(u *User) {
		u.PasswordHash = usr.PasswordHash
	})
	if err != nil {
		return err
	}
	if svc.audit != nil {
		svc.audit.Record(usr.Username, "changement de mot de passe", "")
	}
	return nil
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.AllUsers()
}

func (svc *Service) Delete(id string) (bool, error) {
	return svc.repo.DeleteUser(id)
}
