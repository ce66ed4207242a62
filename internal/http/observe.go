package http

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/primerdw/bartender-api/internal/audit"
	"github.com/primerdw/bartender-api/internal/http/middleware"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/metrics"
	"github.com/primerdw/bartender-api/internal/util"
)

// Recorder accepts audit events without blocking.
type Recorder interface {
	Record(ev audit.Event) bool
}

func outcomeOf(status int) string {
	switch {
	case status == http.StatusOK:
		return "ok"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusBadRequest:
		return "bad_request"
	default:
		return "error"
	}
}

// observe counts and audits every call of res, including the ones the
// API key middleware rejects.
func observe(res lookup.Resource, rec Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			outcome := outcomeOf(status)
			metrics.LookupsTotal.WithLabelValues(res.Name, outcome).Inc()

			if rec != nil {
				rows, _ := c.Get(ctxRowCount).(int)
				var params []string
				q := c.QueryParams()
				for _, p := range res.Params() {
					if _, ok := q[p]; ok {
						params = append(params, p)
					}
				}
				rec.Record(audit.Event{
					ID:             util.New(),
					RequestID:      c.Response().Header().Get(echo.HeaderXRequestID),
					Resource:       res.Name,
					Outcome:        outcome,
					Status:         status,
					Rows:           rows,
					Params:         params,
					KeyFingerprint: middleware.KeyFingerprintFromCtx(c),
					DurationMs:     time.Since(start).Milliseconds(),
					At:             start.UTC(),
				})
			}
			return err
		}
	}
}
