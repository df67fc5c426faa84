package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/middleware"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing or
// incomplete claim set means the route was mounted without Auth.
func ctxClaims(c echo.Context) (*ports.Claims, error) {
	claims, _ := c.Get(middleware.ClaimsKey).(*ports.Claims)
	if claims == nil || claims.EmployeeID == "" || claims.Role == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

func ctxActor(c echo.Context) (ports.Actor, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return ports.Actor{}, err
	}
	return claims.Actor(), nil
}
