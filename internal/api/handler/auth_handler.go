package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/proxygate/accounts/internal/api/metrics"
	"github.com/proxygate/accounts/internal/core/domain"
	"github.com/proxygate/accounts/internal/core/ports"
)

// AuthHandler exposes the password check used by the proxy front end.
type AuthHandler struct {
	service ports.AccountService
}

func NewAuthHandler(service ports.AccountService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Verify checks a username and password pair. It answers 204 on a match and
// 401 otherwise without saying whether the user exists.
//
// @Summary      Verify credentials
// @Tags         auth
// @Accept       json
// @Param        body  body  verifyRequest  true  "Credentials"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start := time.Now()
	_, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	metrics.AuthenticationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuthenticationsTotal.WithLabelValues("verify", metrics.ResultFailure).Inc()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		return err
	}

	metrics.AuthenticationsTotal.WithLabelValues("verify", metrics.ResultSuccess).Inc()
	return c.NoContent(http.StatusNoContent)
}
