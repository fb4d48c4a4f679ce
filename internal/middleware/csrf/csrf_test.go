package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, cfg Config, req *http.Request) (*httptest.ResponseRecorder, string, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var seen string
	err := New(cfg)(func(c echo.Context) error {
		seen = Token(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, seen, err
}

func code(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestSafeMethodIssuesToken(t *testing.T) {
	t.Parallel()

	rec, seen, err := serve(t, Config{}, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.NoError(t, err)
	token := rec.Header().Get(HeaderName)
	require.NotEmpty(t, token)
	assert.Equal(t, token, seen)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.False(t, cookie.HttpOnly)
}

func TestSafeMethodKeepsExistingToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok123"})
	rec, _, err := serve(t, Config{}, req)
	require.NoError(t, err)
	assert.Equal(t, "tok123", rec.Header().Get(HeaderName))
}

func unsafe(token, header string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/products", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.com")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	if header != "" {
		req.Header.Set(HeaderName, header)
	}
	return req
}

func TestUnsafeMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  func() *http.Request
		want int
	}{
		{name: "matching token", req: func() *http.Request { return unsafe("tok123", "tok123") }},
		{name: "missing header", req: func() *http.Request { return unsafe("tok123", "") }, want: http.StatusForbidden},
		{name: "wrong header", req: func() *http.Request { return unsafe("tok123", "tok999") }, want: http.StatusForbidden},
		{name: "no cookie", req: func() *http.Request {
			r := unsafe("", "tok123")
			r.Header.Del("Cookie")
			return r
		}, want: http.StatusForbidden},
		{name: "cross origin", req: func() *http.Request {
			r := unsafe("tok123", "tok123")
			r.Header.Set(echo.HeaderOrigin, "http://evil.example")
			return r
		}, want: http.StatusForbidden},
		{name: "no origin or referer", req: func() *http.Request {
			r := unsafe("tok123", "tok123")
			r.Header.Del(echo.HeaderOrigin)
			return r
		}, want: http.StatusForbidden},
		{name: "referer fallback", req: func() *http.Request {
			r := unsafe("tok123", "tok123")
			r.Header.Del(echo.HeaderOrigin)
			r.Header.Set("Referer", "http://example.com/products")
			return r
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := serve(t, Config{}, tt.req())
			if tt.want == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, code(t, err))
		})
	}
}

func TestTrustedOrigin(t *testing.T) {
	t.Parallel()

	req := unsafe("tok123", "tok123")
	req.Header.Set(echo.HeaderOrigin, "https://shelf.example.com")

	_, _, err := serve(t, Config{TrustedOrigins: []string{"https://shelf.example.com/"}}, req)
	assert.NoError(t, err)
}

func TestExemptAndSkipped(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	_, _, err := serve(t, Config{ExemptPaths: []string{"/api/v1/auth/login"}}, req)
	assert.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	_, _, err = serve(t, Config{Skipper: func(echo.Context) bool { return true }}, req)
	assert.NoError(t, err)
}
