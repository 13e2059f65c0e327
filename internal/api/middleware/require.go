package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/policy"
)

// RequireAuth rejects anonymous requests with an AuthenticationError.
func RequireAuth() echo.MiddlewareFunc {
	return RequireRole()
}

// RequireRole admits authenticated actors holding one of roles. Without
// roles it only requires authentication. Admins always pass.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := policy.Evaluate(policy.Request{
				Actor:        ActorFrom(c),
				Operation:    operationFor(c.Request().Method),
				AllowedRoles: roles,
			})
			if err := d.Err(); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func operationFor(method string) policy.Operation {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return policy.OpRead
	case http.MethodDelete:
		return policy.OpDelete
	default:
		return policy.OpWrite
	}
}
