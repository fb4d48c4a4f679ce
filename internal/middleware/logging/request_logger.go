package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
)

// Annotator adds attributes to the completion line once the handler is done,
// such as the user the auth middleware resolved.
type Annotator func(c echo.Context) []any

// RequestLogger puts a request-scoped logger into the context and writes one
// "request completed" line per request after the error handler has run.
func RequestLogger(base *slog.Logger, annotate ...Annotator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			res := c.Response()
			attrs := []any{"status", res.Status, "duration_ms", time.Since(start).Milliseconds(), "bytes", res.Size}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			for _, a := range annotate {
				attrs = append(attrs, a(c)...)
			}
			l.Log(req.Context(), levelFor(res.Status), "request completed", attrs...)
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
