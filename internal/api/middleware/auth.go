package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/proxygate/accounts/internal/api/metrics"
	"github.com/proxygate/accounts/internal/core/domain"
)

// Context keys set by Auth.
const (
	CtxUsername = "username"
	CtxRole     = "role"
)

// Authenticator is the slice of the account service the middleware needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.Account, error)
}

// Auth checks HTTP Basic credentials against stored accounts and injects the
// username and effective role into the context. Accounts still pending
// approval are rejected like a wrong password.
func Auth(auth Authenticator, realm string) echo.MiddlewareFunc {
	return echomiddleware.BasicAuthWithConfig(echomiddleware.BasicAuthConfig{
		Realm: realm,
		Validator: func(username, password string, c echo.Context) (bool, error) {
			account, err := auth.Login(c.Request().Context(), username, password)
			if err != nil {
				metrics.AuthenticationsTotal.WithLabelValues("basic", metrics.ResultFailure).Inc()
				if errors.Is(err, domain.ErrInvalidCredentials) {
					return false, nil
				}
				return false, err
			}
			if !account.Approved {
				metrics.AuthenticationsTotal.WithLabelValues("basic", metrics.ResultFailure).Inc()
				return false, nil
			}

			metrics.AuthenticationsTotal.WithLabelValues("basic", metrics.ResultSuccess).Inc()
			c.Set(CtxUsername, account.Username)
			c.Set(CtxRole, account.EffectiveRole())
			return true, nil
		},
	})
}
