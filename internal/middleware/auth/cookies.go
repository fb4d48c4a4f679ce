package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// tokenCookie builds an HttpOnly cookie for one half of the token pair. A zero
// expiry tells the browser to drop the cookie.
func tokenCookie(name, value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if expires.IsZero() {
		ck.Value = ""
		ck.Expires = time.Unix(0, 0)
		ck.MaxAge = -1
	}
	return ck
}

// SetAuthCookies hands a fresh login or refresh result to the browser.
func SetAuthCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokenCookie(AccessCookie, res.AccessToken, res.AccessExp))
	c.SetCookie(tokenCookie(RefreshCookie, res.RefreshToken, res.RefreshExp))
}

func ClearAuthCookies(c echo.Context) {
	c.SetCookie(tokenCookie(AccessCookie, "", time.Time{}))
	c.SetCookie(tokenCookie(RefreshCookie, "", time.Time{}))
}
