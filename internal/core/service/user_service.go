package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// UserService implements account administration and profile settings.
// Deactivating or deleting an account ends its open sessions; tokens may be
// nil when nothing verifies sessions (the seed-admin command).
type UserService struct {
	repo     ports.UserRepository
	tokens   ports.TokenStore
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewUserService(repo ports.UserRepository, tokens ports.TokenStore, tokenTTL time.Duration, log zerolog.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{repo: repo, tokens: tokens, tokenTTL: tokenTTL, log: log}
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreatedUser, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.EmployeeID == "" || in.Phone == "" {
		return nil, fmt.Errorf("%w: name, employeeId and phone", domain.ErrMissingField)
	}
	if in.Role == "" {
		in.Role = domain.RoleOperator
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrInvalidRole
	}

	out := &ports.CreatedUser{}
	password := in.Password
	if password == "" {
		password = domain.DefaultPassword(in.Name, in.EmployeeID, in.Phone)
		out.InitialPassword = password
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.repo.Create(ctx, &domain.User{
		Name:              in.Name,
		EmployeeID:        in.EmployeeID,
		Phone:             in.Phone,
		Role:              in.Role,
		Status:            domain.StatusActive,
		Avatar:            domain.Initials(in.Name),
		PasswordHash:      string(hash),
		IsDefaultPassword: true,
		Theme:             domain.ThemeLight,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("employee_id", user.EmployeeID).Str("role", user.Role).Msg("user created")
	out.User = user
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// Delete removes an account. Admins cannot delete themselves or the
// bootstrap administrator.
func (s *UserService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.EmployeeID == actor.EmployeeID || user.EmployeeID == domain.AdminEmployeeID {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("employee_id", user.EmployeeID).Str("actor", actor.EmployeeID).Msg("user deleted")
	return s.endSessions(ctx, user)
}

// ToggleStatus flips a user between Active and Inactive.
func (s *UserService) ToggleStatus(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.EmployeeID == actor.EmployeeID {
		return nil, domain.ErrForbidden
	}
	if user.Active() {
		user.Status = domain.StatusInactive
	} else {
		user.Status = domain.StatusActive
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !user.Active() {
		if err := s.endSessions(ctx, user); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("employee_id", user.EmployeeID).Str("status", user.Status).Str("actor", actor.EmployeeID).Msg("user status changed")
	return user, nil
}

// endSessions rejects every token issued to user up to now.
func (s *UserService) endSessions(ctx context.Context, user *domain.User) error {
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.RevokeUser(ctx, user.ID, time.Now(), s.tokenTTL); err != nil {
		return fmt.Errorf("end sessions of %s: %w", user.EmployeeID, err)
	}
	return nil
}

func (s *UserService) SetSignature(ctx context.Context, actor ports.Actor, employeeID, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: signature", domain.ErrMissingField)
	}
	return s.updateOwn(ctx, actor, employeeID, func(u *domain.User) { u.Signature = signature })
}

func (s *UserService) RemoveSignature(ctx context.Context, actor ports.Actor, employeeID string) error {
	return s.updateOwn(ctx, actor, employeeID, func(u *domain.User) { u.Signature = "" })
}

func (s *UserService) SetTheme(ctx context.Context, actor ports.Actor, theme string) error {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return domain.ErrInvalidTheme
	}
	return s.updateOwn(ctx, actor, actor.EmployeeID, func(u *domain.User) { u.Theme = theme })
}

func (s *UserService) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, ports.CreateUserInput{
		Name:       "System Administrator",
		EmployeeID: domain.AdminEmployeeID,
		Phone:      "0000000000",
		Role:       domain.RoleAdmin,
		Password:   password,
	})
	if err != nil {
		return false, err
	}
	s.log.Warn().Str("employee_id", domain.AdminEmployeeID).Msg("bootstrap admin created, change its password")
	return true, nil
}

// updateOwn applies fn to the caller's own record, or any record for Admin.
func (s *UserService) updateOwn(ctx context.Context, actor ports.Actor, employeeID string, fn func(*domain.User)) error {
	if actor.EmployeeID != employeeID && actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	user, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return err
	}
	fn(user)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}
