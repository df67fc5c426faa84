package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	RoleAdmin      = "Admin"
	RoleManager    = "Manager"
	RoleSupervisor = "Supervisor"
	RoleOperator   = "Operator"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// AdminEmployeeID is the identity of the bootstrap administrator.
const AdminEmployeeID = "ADMIN001"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this employee id already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain upper and lower case letters, a digit and one of @#$&!_")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidTheme       = errors.New("invalid theme")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// User is a plant employee with portal access.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	EmployeeID        string    `json:"employeeId"`
	Phone             string    `json:"phone"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	Avatar            string    `json:"avatar"`
	PasswordHash      string    `json:"-"`
	IsDefaultPassword bool      `json:"isDefaultPassword"`
	Signature         string    `json:"signature,omitempty"`
	Theme             string    `json:"theme"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (u *User) Active() bool { return u.Status == StatusActive }

// ValidRole reports whether r is one of the four portal roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSupervisor, RoleOperator:
		return true
	}
	return false
}

// Initials returns the uppercase first letters of each word in name.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
	}
	return b.String()
}

// DefaultPassword builds the first-login password: the first two initials,
// then the last four characters of the employee id and of the phone number.
func DefaultPassword(name, employeeID, phone string) string {
	ini := Initials(name)
	if r := []rune(ini); len(r) > 2 {
		ini = string(r[:2])
	}
	return ini + lastN(employeeID, 4) + lastN(phone, 4)
}

func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

const passwordSpecials = "@#$&!_"

// ValidatePassword enforces the password policy.
func ValidatePassword(p string) error {
	if len(p) < 8 {
		return ErrWeakPassword
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !(lower && upper && digit && special) {
		return ErrWeakPassword
	}
	return nil
}
