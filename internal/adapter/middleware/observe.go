package middleware

import (
	"strconv"
	"time"

	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Observe logs one line per request and feeds the HTTP metrics. Routes are
// labelled by their pattern, never the raw path.
func Observe(log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log).Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)
			status := res.Status

			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("latency", elapsed),
			}
			if id, ok := ActorID(c); ok {
				fields = append(fields, zap.Uint64("actor_id", id))
			}
			switch {
			case status >= 500:
				log.Error("request", fields...)
			case status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
