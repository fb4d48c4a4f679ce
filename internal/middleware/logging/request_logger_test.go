package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "debug", "json")

	e := echo.New()
	e.Use(RequestLogger(base, func(c echo.Context) []any { return []any{"user", c.Get("user")} }))
	e.GET("/boom", func(c echo.Context) error {
		c.Set("user", "ana")
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return echo.NewHTTPError(http.StatusNotFound, "nothing here")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	got := lines(t, &buf)
	require.Len(t, got, 2)
	inner, done := got[0], got[1]
	assert.Equal(t, "rid-1", inner["request_id"])
	assert.Equal(t, "/boom", inner["path"])
	assert.Equal(t, "request completed", done["msg"])
	assert.EqualValues(t, 404, done["status"])
	assert.Equal(t, "WARN", done["level"])
	assert.Equal(t, "ana", done["user"])
	assert.Contains(t, done["error"], "nothing here")
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		handler echo.HandlerFunc
		level   string
	}{
		{name: "ok", handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) }, level: "INFO"},
		{name: "plain error", handler: func(echo.Context) error { return errors.New("boom") }, level: "ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := echo.New()
			e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug", "json")))
			e.GET("/", tt.handler)

			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			got := lines(t, &buf)
			require.Len(t, got, 1)
			assert.Equal(t, tt.level, got[0]["level"])
		})
	}
}
