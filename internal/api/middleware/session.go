package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "psychology_clinic.sid"

const (
	ctxKeyActor     = "actor"
	ctxKeyIdentity  = "identity"
	ctxKeySessionID = "session_id"
)

// IdentityGetter loads the identity behind a session.
type IdentityGetter interface {
	Get(ctx context.Context, id string) (*domain.Identity, error)
}

// Session resolves the session cookie into the request's actor. Requests
// without a cookie, with an unknown session, or whose identity is gone or
// inactive proceed anonymously. A session store outage fails the request.
func Session(store ports.SessionStore, users IdentityGetter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			sess, err := store.Get(ctx, cookie.Value)
			if err != nil {
				return err
			}
			if sess == nil {
				return next(c)
			}
			c.Set(ctxKeySessionID, sess.ID)

			identity, err := users.Get(ctx, sess.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					log.Debug().Str("user_id", sess.UserID).Msg("session references missing user")
					return next(c)
				}
				return err
			}
			if !identity.Active {
				return next(c)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity marks the request as made by identity.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(ctxKeyIdentity, identity)
	c.Set(ctxKeyActor, identity.Actor())
}

// ActorFrom returns the authenticated actor, or nil for anonymous requests.
func ActorFrom(c echo.Context) *domain.Actor {
	actor, _ := c.Get(ctxKeyActor).(*domain.Actor)
	return actor
}

// IdentityFrom returns the authenticated identity, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(ctxKeyIdentity).(*domain.Identity)
	return identity
}

// SessionIDFrom returns the id of a known session, even when its identity is gone.
func SessionIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxKeySessionID).(string)
	return id
}
