package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*ports.CreatedUser, error) {
			if in.EmployeeID != "EMP0042" || in.Role != domain.RoleSupervisor {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.CreatedUser{
				User:            &domain.User{EmployeeID: in.EmployeeID, Role: in.Role, PasswordHash: "hash"},
				InitialPassword: "RK00429876",
			}, nil
		},
	}
	handler := NewUserHandler(stub)

	body := `{"name":"Ravi Kumar","employeeId":"EMP0042","phone":"9123459876","role":"Supervisor"}`
	c, rec := newCtx(http.MethodPost, "/user/users", body, nil)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["initialPassword"] != "RK00429876" {
		t.Fatalf("expected generated password in response, got %+v", resp)
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	handler := NewUserHandler(&stubUserService{})

	cases := []string{
		`{"employeeId":"E1","phone":"1234"}`,
		`{"name":"A","employeeId":"E1","phone":"12ab"}`,
		`{"name":"A","employeeId":"E1","phone":"1234","role":"Guest"}`,
	}
	for _, body := range cases {
		c, _ := newCtx(http.MethodPost, "/user/users", body, nil)
		expectHTTPError(t, handler.Create(c), http.StatusBadRequest)
	}
}

func TestUserHandler_ToggleStatus(t *testing.T) {
	stub := &stubUserService{
		toggleFn: func(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("unexpected id %s", id)
			}
			return &domain.User{ID: id, Status: domain.StatusInactive}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newCtx(http.MethodPatch, "/user/users/u1/status", "", operatorClaims)
	withParams(c, "id", "u1")
	if err := handler.ToggleStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != domain.StatusInactive {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if _, ok := resp["_id"]; ok || resp["id"] != "u1" {
		t.Fatalf("user must be keyed by id: %s", rec.Body.String())
	}
}

func TestUserHandler_SetTheme(t *testing.T) {
	var got string
	stub := &stubUserService{
		themeFn: func(ctx context.Context, actor ports.Actor, theme string) error {
			got = theme
			return nil
		},
	}
	handler := NewUserHandler(stub)

	c, _ := newCtx(http.MethodPut, "/user/me/theme", `{"theme":"dark"}`, operatorClaims)
	if err := handler.SetTheme(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "dark" {
		t.Fatalf("expected dark, got %q", got)
	}

	c, _ = newCtx(http.MethodPut, "/user/me/theme", `{"theme":"blue"}`, operatorClaims)
	expectHTTPError(t, handler.SetTheme(c), http.StatusBadRequest)
}
