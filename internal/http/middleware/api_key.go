package middleware

import (
	"context"

	echo "github.com/labstack/echo/v4"
	"github.com/primerdw/bartender-api/internal/apperr"
	"github.com/primerdw/bartender-api/internal/audit"
	"github.com/primerdw/bartender-api/internal/metrics"
)

// HeaderAPIKey carries the caller's key.
const HeaderAPIKey = "X-API-KEY"

const ctxKeyFingerprint = "api_key_fingerprint"

// KeyValidator decides whether an API key may call the lookups.
type KeyValidator interface {
	IsValid(ctx context.Context, apiKey string) (bool, error)
}

// KeyFingerprintFromCtx returns the fingerprint of the key that passed
// APIKeyMiddleware, or "" when none did.
func KeyFingerprintFromCtx(c echo.Context) string {
	v, _ := c.Get(ctxKeyFingerprint).(string)
	return v
}

// APIKeyMiddleware authenticates requests using the X-API-KEY header.
// Unknown and inactive keys fail alike with apperr.ErrUnauthorized; a
// failing registry lookup is returned as is and becomes a 5xx.
func APIKeyMiddleware(keys KeyValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderAPIKey)

			ok, err := keys.IsValid(c.Request().Context(), key)
			if err != nil {
				metrics.KeyChecksTotal.WithLabelValues("error").Inc()
				return err
			}
			if !ok {
				metrics.KeyChecksTotal.WithLabelValues("invalid").Inc()
				return apperr.ErrUnauthorized
			}

			metrics.KeyChecksTotal.WithLabelValues("valid").Inc()
			c.Set(ctxKeyFingerprint, audit.Fingerprint(key))
			return next(c)
		}
	}
}
