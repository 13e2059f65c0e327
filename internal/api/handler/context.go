package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/api/middleware"
	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// ctxActor returns the actor resolved by the session middleware; nil is anonymous.
func ctxActor(c echo.Context) *domain.Actor {
	return middleware.ActorFrom(c)
}

// pathID reads an ObjectID path parameter. Malformed ids are a validation
// error, never a 404.
func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if !objectIDPattern.MatchString(id) {
		return "", domain.ErrInvalidID
	}
	return id, nil
}

// bindRequest binds the JSON body, sanitizes every string in it and validates
// the result.
func bindRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("request body must be valid JSON")
	}
	sanitize(req)
	return c.Validate(req)
}
