package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/api/metrics"
	"github.com/psyclinic/clinic-api/internal/api/middleware"
	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// AuthConfig carries the cookie and signing settings of AuthHandler.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool
}

type AuthHandler struct {
	identities ports.IdentityService
	provider   ports.OAuthProvider
	sessions   ports.SessionStore
	state      *stateSigner
	cfg        AuthConfig
	log        zerolog.Logger
}

// NewAuthHandler builds the auth endpoints. provider may be nil, in which case
// the GitHub routes answer with an InfrastructureError.
func NewAuthHandler(
	identities ports.IdentityService,
	provider ports.OAuthProvider,
	sessions ports.SessionStore,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		identities: identities,
		provider:   provider,
		sessions:   sessions,
		state:      newStateSigner(cfg.SessionSecret),
		cfg:        cfg,
		log:        log,
	}
}

var errGitHubDisabled = domain.NewUnavailableError("GitHub authentication is not configured", nil)

// GitHub handles GET /auth/github.
//
// @Summary      Start GitHub login
// @Tags         auth
// @Success      302
// @Failure      500  {object}  errorResponse
// @Router       /auth/github [get]
func (h *AuthHandler) GitHub(c echo.Context) error {
	if h.provider == nil {
		return errGitHubDisabled
	}
	token, nonce, err := h.state.issue()
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    nonce,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(token))
}

// GitHubCallback handles GET /auth/github/callback.
//
// @Summary      Complete GitHub login
// @Tags         auth
// @Produce      json
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "State token"
// @Success      200    {object}  loginResponse
// @Failure      401    {object}  errorResponse
// @Router       /auth/github/callback [get]
func (h *AuthHandler) GitHubCallback(c echo.Context) error {
	if h.provider == nil {
		return errGitHubDisabled
	}
	h.clearCookie(c, stateCookie, "/auth")

	if reason := c.QueryParam("error"); reason != "" {
		metrics.LoginsTotal.WithLabelValues("github", "failure").Inc()
		return domain.NewAuthenticationError("GitHub authentication failed", errors.New(reason))
	}

	var nonce string
	if cookie, err := c.Cookie(stateCookie); err == nil {
		nonce = cookie.Value
	}
	if err := h.state.verify(c.QueryParam("state"), nonce); err != nil {
		metrics.LoginsTotal.WithLabelValues("github", "failure").Inc()
		return domain.NewAuthenticationError("GitHub authentication failed", err)
	}

	ctx := c.Request().Context()
	profile, err := h.provider.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("github", "failure").Inc()
		return domain.NewAuthenticationError("GitHub authentication failed", err)
	}
	user, err := h.identities.ResolveGitHubLogin(ctx, *profile)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("github", "failure").Inc()
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("github", "success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful!", User: toUserSummary(user)})
}

// Register handles POST /auth/register.
//
// @Summary      Register a local account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account"
// @Success      201   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	user, err := h.identities.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, loginResponse{Message: "Registration successful", User: toUserSummary(user)})
}

// Login handles POST /auth/login.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	user, err := h.identities.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("local", "failure").Inc()
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("local", "success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful!", User: toUserSummary(user)})
}

// Status handles GET /auth/status.
//
// @Summary      Authentication status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       /auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	user := middleware.IdentityFrom(c)
	if user == nil {
		return c.JSON(http.StatusOK, statusResponse{})
	}
	summary := toUserSummary(user)
	return c.JSON(http.StatusOK, statusResponse{IsAuthenticated: true, User: &summary})
}

// Profile handles GET /auth/profile.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user := middleware.IdentityFrom(c)
	if user == nil {
		return domain.NewAuthenticationError("Authentication required", nil)
	}
	return c.JSON(http.StatusOK, profileResponse{User: toProfileUser(user)})
}

// Logout handles POST /auth/logout. Logging out without a session succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := middleware.SessionIDFrom(c); sid != "" {
		if err := h.sessions.Delete(c.Request().Context(), sid); err != nil {
			return err
		}
	}
	h.clearCookie(c, middleware.SessionCookie, "/")
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// startSession replaces any current session with a new one for user.
func (h *AuthHandler) startSession(c echo.Context, user *domain.Identity) error {
	ctx := c.Request().Context()
	if old := middleware.SessionIDFrom(c); old != "" {
		if err := h.sessions.Delete(ctx, old); err != nil {
			h.log.Warn().Err(err).Msg("failed to drop previous session")
		}
	}
	sess, err := h.sessions.Create(ctx, user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.Info().Str("user_id", user.ID).Msg("login")
	return nil
}

func (h *AuthHandler) clearCookie(c echo.Context, name, path string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
