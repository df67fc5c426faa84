package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, employeeID, password string) (string, *domain.User, error) {
			if employeeID != "OP1" || password != "Secret@123" {
				t.Fatalf("unexpected args: %s %s", employeeID, password)
			}
			return "token123", &domain.User{EmployeeID: employeeID, Role: domain.RoleOperator}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	c, rec := newCtx(http.MethodPost, "/user/auth/login", `{"employeeId":"OP1","password":"Secret@123"}`, nil)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["employeeId"] != "OP1" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	c, _ := newCtx(http.MethodPost, "/user/auth/login", `{"employeeId":"OP1"}`, nil)
	expectHTTPError(t, handler.Login(c), http.StatusBadRequest)
}

func TestAuthHandler_Login_PassesDomainErrors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrUserInactive} {
		stub := &stubAuthService{
			loginFn: func(context.Context, string, string) (string, *domain.User, error) {
				return "", nil, want
			},
		}
		handler := NewAuthHandler(stub, &stubUserService{})
		c, _ := newCtx(http.MethodPost, "/user/auth/login", `{"employeeId":"OP1","password":"x"}`, nil)
		if err := handler.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, claims *ports.Claims) error {
			revoked = claims.TokenID
			return nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	c, rec := newCtx(http.MethodPost, "/user/auth/logout", "", operatorClaims)
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || revoked != "tok-1" {
		t.Fatalf("expected token tok-1 revoked, got code %d token %q", rec.Code, revoked)
	}
}

func TestAuthHandler_Logout_WithoutClaims(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	c, _ := newCtx(http.MethodPost, "/user/auth/logout", "", nil)
	expectHTTPError(t, handler.Logout(c), http.StatusUnauthorized)
}

func TestAuthHandler_Me(t *testing.T) {
	users := &stubUserService{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id != operatorClaims.UserID {
				t.Fatalf("unexpected id %s", id)
			}
			return &domain.User{ID: id, EmployeeID: "OP1", Name: "Ravi Kumar"}, nil
		},
	}
	handler := NewAuthHandler(&stubAuthService{}, users)

	c, rec := newCtx(http.MethodGet, "/user/auth/me", "", operatorClaims)
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["name"] != "Ravi Kumar" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotActor ports.Actor
	stub := &stubAuthService{
		changePasswordFn: func(ctx context.Context, actor ports.Actor, employeeID, newPassword string) error {
			gotActor = actor
			if employeeID != "OP1" || newPassword != "Str0ng@pass" {
				t.Fatalf("unexpected args: %s %s", employeeID, newPassword)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	c, rec := newCtx(http.MethodPost, "/user/auth/change-password", `{"employeeId":"OP1","newPassword":"Str0ng@pass"}`, operatorClaims)
	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotActor.EmployeeID != "OP1" || gotActor.Role != domain.RoleOperator {
		t.Fatalf("actor not taken from claims: %+v", gotActor)
	}
}
