package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// UserHandler serves account administration and per-user preferences.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns every account.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /user/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create adds an account. When no password is given the generated default
// password is returned once.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /user/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		Name:       req.Name,
		EmployeeID: req.EmployeeID,
		Phone:      req.Phone,
		Role:       req.Role,
		Password:   req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createUserResponse{User: out.User, InitialPassword: out.InitialPassword})
}

// Delete removes an account.
//
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// ToggleStatus flips an account between Active and Inactive.
//
// @Summary      Toggle user status
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/users/{id}/status [patch]
func (h *UserHandler) ToggleStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	user, err := h.service.ToggleStatus(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetSignature stores a signature image for an employee.
//
// @Summary      Upload signature
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      signatureRequest  true  "Signature image as data URL"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /user/signature [put]
func (h *UserHandler) SetSignature(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req signatureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SetSignature(c.Request().Context(), actor, req.EmployeeID, req.Signature); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "signature saved"})
}

// RemoveSignature clears an employee's stored signature.
//
// @Summary      Remove signature
// @Tags         users
// @Security     BearerAuth
// @Param        employeeId  path      string  true  "Employee id"
// @Success      200         {object}  messageResponse
// @Failure      403         {object}  errorResponse
// @Router       /user/signature/{employeeId} [delete]
func (h *UserHandler) RemoveSignature(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveSignature(c.Request().Context(), actor, c.Param("employeeId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "signature removed"})
}

// SetTheme stores the caller's UI theme.
//
// @Summary      Set theme
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      themeRequest  true  "Theme"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /user/me/theme [put]
func (h *UserHandler) SetTheme(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req themeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SetTheme(c.Request().Context(), actor, req.Theme); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "theme updated"})
}
