package http

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReadyCheck is a named dependency probe.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func readyHandler(checks []ReadyCheck, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		for _, rc := range checks {
			if err := rc.Check(ctx); err != nil {
				log.Warn("readiness check failed", zap.String("check", rc.Name), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"check":  rc.Name,
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
}
