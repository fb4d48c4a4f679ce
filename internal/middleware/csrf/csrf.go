// Package csrf guards the cookie-authenticated API with a double-submit
// token: the value of the XSRF-TOKEN cookie must be echoed in the
// X-CSRF-Token header of every mutating request, and the request has to come
// from the API's own origin or a trusted front end.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	CookieName = "XSRF-TOKEN"
	HeaderName = "X-CSRF-Token"

	tokenKey   = "csrf_token"
	tokenBytes = 32
	defaultTTL = 12 * time.Hour
)

type Config struct {
	Skipper echomw.Skipper
	// ExemptPaths are matched against the request path, e.g. the login route
	// that runs before any token has been handed out.
	ExemptPaths []string
	// TrustedOrigins are scheme://host values besides the API host itself.
	TrustedOrigins []string
	Secure         bool
	TTL            time.Duration
}

type guard struct {
	cfg     Config
	exempt  map[string]struct{}
	trusted map[string]struct{}
}

func New(cfg Config) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomw.DefaultSkipper
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	g := &guard{cfg: cfg, exempt: map[string]struct{}{}, trusted: map[string]struct{}{}}
	for _, p := range cfg.ExemptPaths {
		g.exempt[p] = struct{}{}
	}
	for _, o := range cfg.TrustedOrigins {
		g.trusted[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return g.handle
}

func (g *guard) handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if _, ok := g.exempt[req.URL.Path]; ok || g.cfg.Skipper(c) {
			return next(c)
		}

		token, err := g.ensureToken(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue CSRF token")
		}
		c.Set(tokenKey, token)

		if req.Method == http.MethodGet || req.Method == http.MethodHead || req.Method == http.MethodOptions {
			c.Response().Header().Set(HeaderName, token)
			return next(c)
		}

		if !g.originAllowed(req) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
		}
		if !equal(token, req.Header.Get(HeaderName)) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
		}
		return next(c)
	}
}

// ensureToken reuses the cookie token and refreshes its expiry, or mints one.
func (g *guard) ensureToken(c echo.Context) (string, error) {
	token := ""
	if ck, err := c.Cookie(CookieName); err == nil {
		token = ck.Value
	}
	if token == "" {
		b := make([]byte, tokenBytes)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		token = base64.RawURLEncoding.EncodeToString(b)
	}

	// Readable by the front end so it can copy the value into the header.
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Secure:   g.cfg.Secure,
		MaxAge:   int(g.cfg.TTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func (g *guard) originAllowed(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		origin = r.Referer()
	}
	u, err := url.Parse(origin)
	if origin == "" || err != nil || u.Host == "" {
		return false
	}

	if strings.EqualFold(u.Host, r.Host) && strings.EqualFold(u.Scheme, scheme(r)) {
		return true
	}
	_, ok := g.trusted[strings.ToLower(u.Scheme+"://"+u.Host)]
	return ok
}

func scheme(r *http.Request) string {
	if p := r.Header.Get(echo.HeaderXForwardedProto); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func equal(a, b string) bool {
	return a != "" && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Token is the value checked for the current request, empty when the guard
// did not run.
func Token(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}
