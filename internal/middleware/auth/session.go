package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
)

const sessionKey = "session"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*service.LoginResult, error)
}

// SessionMiddleware resolves the access cookie to a live session and, when
// the access token has merely expired, rotates the pair with the refresh
// cookie before the handler runs.
type SessionMiddleware struct {
	Auth Authenticator
}

func NewSessionMiddleware(a Authenticator) *SessionMiddleware {
	return &SessionMiddleware{Auth: a}
}

type ValidatorFunc func(s *models.Session) error

func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, nil)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(s *models.Session) error {
		if s.Section != models.SectionAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// RequireOverview admits Admin and Management.
func (m *SessionMiddleware) RequireOverview(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(s *models.Session) error {
		if !models.SeesAllSections(s.Section) {
			return echo.NewHTTPError(http.StatusForbidden, "admin or management access required")
		}
		return nil
	})
}

func (m *SessionMiddleware) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "auth.session")

		accessCookie, err := c.Cookie(AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return m.refreshAndServe(c, next, validator)
		}

		sess, err := m.Auth.Authenticate(ctx, accessCookie.Value)
		if err == nil {
			return serve(c, next, validator, sess)
		}
		if !errors.Is(err, service.ErrInvalidSession) {
			l.Error("authenticate_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot check session")
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			l.Warn("authenticate_failed", "status", 401, "error", err)
			ClearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
		}
		return m.refreshAndServe(c, next, validator)
	}
}

func (m *SessionMiddleware) refreshAndServe(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc) error {
	ctx := c.Request().Context()

	refreshCookie, err := c.Cookie(RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		ClearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	res, err := m.Auth.Refresh(ctx, refreshCookie.Value)
	if err != nil {
		ClearAuthCookies(c)
		if errors.Is(err, service.ErrInvalidSession) {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot refresh session")
	}

	SetAuthCookies(c, res)
	return serve(c, next, validator, res.Session)
}

func serve(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc, sess *models.Session) error {
	if validator != nil {
		if err := validator(sess); err != nil {
			return err
		}
	}
	c.Set(sessionKey, sess)
	return next(c)
}

func SessionFrom(c echo.Context) (*models.Session, bool) {
	s, ok := c.Get(sessionKey).(*models.Session)
	return s, ok && s != nil
}

// PrincipalFrom returns the zero Principal outside RequireSession.
func PrincipalFrom(c echo.Context) service.Principal {
	s, ok := SessionFrom(c)
	if !ok {
		return service.Principal{}
	}
	return service.PrincipalFromSession(s)
}

// LogFields tags request log lines with the signed-in user.
func LogFields(c echo.Context) []any {
	s, ok := SessionFrom(c)
	if !ok {
		return nil
	}
	return []any{"user", s.Username, "section", s.Section}
}
