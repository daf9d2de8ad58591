package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proxygate/accounts/internal/api/middleware"
	"github.com/proxygate/accounts/internal/core/domain"
)

// ctxPrincipal extracts the caller injected by the Auth middleware. A missing
// username means the route was mounted without authentication.
func ctxPrincipal(c echo.Context) (username string, role domain.Role, err error) {
	username, _ = c.Get(middleware.CtxUsername).(string)
	if username == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	role, _ = c.Get(middleware.CtxRole).(domain.Role)
	return username, role, nil
}
