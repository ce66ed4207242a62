package http

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/primerdw/bartender-api/internal/apperr"
	"go.uber.org/zap"
)

const (
	msgUnauthorized = "Unauthorized. Invalid API key."
	msgInternal     = "internal error"
)

// statusOf maps a handler error to its response status.
func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperr.Status(err)
}

// errorHandler renders every error a route returns. Upstream failures are
// logged in full; the caller gets a generic message unless expose is set.
func errorHandler(log *zap.Logger, expose bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusOf(err)
		var body map[string]string

		var nf *apperr.NotFoundError
		var he *echo.HTTPError
		switch {
		case status == http.StatusUnauthorized:
			body = map[string]string{"error": msgUnauthorized}
		case errors.As(err, &nf):
			body = map[string]string{"message": nf.Message}
		case errors.As(err, &he):
			body = map[string]string{"error": http.StatusText(he.Code)}
		case status == http.StatusBadRequest:
			body = map[string]string{"error": err.Error()}
		default:
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err))
			msg := msgInternal
			if expose {
				msg = rootCause(err).Error()
			}
			body = map[string]string{"error": msg}
		}

		if err := c.JSON(status, body); err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
