package ports

import (
	"context"
	"time"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

// UserRepository persists portal users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update overwrites the mutable fields of an existing user.
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

// TokenStore tracks revoked session tokens until they expire.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// RevokeUser invalidates every token of userID issued at or before at.
	// The cutoff is kept for ttl, the lifetime of the longest token.
	RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	// RevokedBefore returns the cutoff set by RevokeUser, zero when none.
	RevokedBefore(ctx context.Context, userID string) (time.Time, error)
}

// Claims is the verified content of a session token.
type Claims struct {
	UserID     string
	EmployeeID string
	Name       string
	Role       string
	TokenID    string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

func (c *Claims) Actor() Actor {
	return Actor{UserID: c.UserID, EmployeeID: c.EmployeeID, Name: c.Name, Role: c.Role}
}

type AuthService interface {
	Login(ctx context.Context, employeeID, password string) (string, *domain.User, error)
	Logout(ctx context.Context, claims *Claims) error
	// Verify parses and validates a bearer token, rejecting revoked ones.
	Verify(ctx context.Context, token string) (*Claims, error)
	ChangePassword(ctx context.Context, actor Actor, employeeID, newPassword string) error
}

// CreateUserInput carries a new account. An empty Password is replaced by
// the generated default password.
type CreateUserInput struct {
	Name       string
	EmployeeID string
	Phone      string
	Role       string
	Password   string
}

// CreatedUser is returned once; InitialPassword is only set when generated.
type CreatedUser struct {
	User            *domain.User
	InitialPassword string
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*CreatedUser, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, actor Actor, id string) error
	ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.User, error)
	SetSignature(ctx context.Context, actor Actor, employeeID, signature string) error
	RemoveSignature(ctx context.Context, actor Actor, employeeID string) error
	SetTheme(ctx context.Context, actor Actor, theme string) error
	// EnsureAdmin seeds the bootstrap administrator when no Admin exists.
	EnsureAdmin(ctx context.Context, password string) (bool, error)
}
