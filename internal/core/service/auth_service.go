package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// AuthService implements login, logout and password changes.
type AuthService struct {
	repo      ports.UserRepository
	tokens    ports.TokenStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, tokens: tokens, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

func (s *AuthService) Login(ctx context.Context, employeeID, password string) (string, *domain.User, error) {
	if employeeID == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.Active() {
		return "", nil, domain.ErrUserInactive
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("employee_id", user.EmployeeID).Str("role", user.Role).Msg("user logged in")
	return token, user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *ports.Claims) error {
	if claims == nil || claims.TokenID == "" {
		return domain.ErrInvalidCredentials
	}
	return s.tokens.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (s *AuthService) Verify(ctx context.Context, raw string) (*ports.Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	claims := &ports.Claims{
		UserID:     stringClaim(mc, "sub"),
		EmployeeID: stringClaim(mc, "employee_id"),
		Name:       stringClaim(mc, "name"),
		Role:       stringClaim(mc, "role"),
		TokenID:    stringClaim(mc, "jti"),
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if claims.EmployeeID == "" || claims.TokenID == "" {
		return nil, domain.ErrInvalidCredentials
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		s.log.Warn().Err(err).Str("jti", claims.TokenID).Msg("revocation check failed, accepting token")
	} else if revoked {
		return nil, domain.ErrTokenRevoked
	}

	cutoff, err := s.tokens.RevokedBefore(ctx, claims.UserID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("user revocation check failed, accepting token")
	} else if !cutoff.IsZero() && !claims.IssuedAt.After(cutoff) {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

// ChangePassword sets a new password for employeeID. Users may only change
// their own password unless they are Admin.
func (s *AuthService) ChangePassword(ctx context.Context, actor ports.Actor, employeeID, newPassword string) error {
	if actor.EmployeeID != employeeID && actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.IsDefaultPassword = false
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("employee_id", employeeID).Str("actor", actor.EmployeeID).Msg("password changed")
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         user.ID,
		"employee_id": user.EmployeeID,
		"name":        user.Name,
		"role":        user.Role,
		"jti":         uuid.NewString(),
		"iat":         now.Unix(),
		"exp":         now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func stringClaim(mc jwt.MapClaims, key string) string {
	v, _ := mc[key].(string)
	return v
}
