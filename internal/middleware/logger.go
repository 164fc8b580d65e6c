package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/logging"
)

// RequestLogger attaches a request-scoped zerolog logger (tagged with the
// X-Request-ID set by echo's RequestID middleware) to the request context
// and writes one access line per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}
			ctx := logging.WithRequestID(req.Context(), rid)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := logging.Ctx(ctx).Info()
			if status >= 500 {
				ev = logging.Ctx(ctx).Error().Err(err)
			} else if status >= 400 {
				ev = logging.Ctx(ctx).Warn()
			}
			ev.Str("method", req.Method).
				Str("path", c.Path()).
				Str("uri", req.RequestURI).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Uint64("user_id", UserID(c)).
				Msg("request")
			return nil
		}
	}
}
