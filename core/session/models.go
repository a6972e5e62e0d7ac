package session

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff" // the backend calls them "Trainer" or "Staff"
	RoleStudent Role = "student"
)

var errUnknownRole = errors.New("unknown role")

// ParseRole maps a backend role name to a Role.
func ParseRole(name string) (Role, error) {
	switch core.CleanString(name, true /* lower */) {
	case "admin":
		return RoleAdmin, nil
	case "staff", "trainer":
		return RoleStaff, nil
	case "student":
		return RoleStudent, nil
	}
	return "", errors.Wrapf(errUnknownRole, "%q", name)
}

// Profile is the logged in user, as returned by the backend on login.
type Profile struct {
	ID        string `json:"id"` // staff ID or student roll no.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Image     string `json:"image,omitempty"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Session is the server-held replacement of the browser's local storage user & token.
type Session struct {
	ID           string    `json:"id"`
	Profile      Profile   `json:"user"`
	BackendToken string    `json:"-"`
	RememberMe   bool      `json:"rememberMe"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Profile.Role == r {
			return true
		}
	}
	return false
}

func (s Session) IsAdmin() bool   { return s.HasRole(RoleAdmin) }
func (s Session) IsStaff() bool   { return s.HasRole(RoleStaff) }
func (s Session) IsStudent() bool { return s.HasRole(RoleStudent) }

// Record is a Session as persisted: the backend token is sealed.
type Record struct {
	ID          string
	Profile     Profile
	SealedToken []byte
	RememberMe  bool
	CreatedAt   time.Time
	ExpiresAt   time.Time
	LastSeenAt  time.Time
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

type ForgotPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdminlen"`
}

func (fr *ForgotPasswordRequest) Validate(validate *validator.Validate) error {
	fr.Email = core.CleanString(fr.Email, true /* lower */)
	return validate.Struct(fr)
}

// LoginResult is what the backend hands back on a successful login.
type LoginResult struct {
	Message string
	Token   string
	Profile Profile
}
