package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/primerdw/bartender-api/internal/http/middleware"
	"github.com/primerdw/bartender-api/internal/logger"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/metrics"
	"github.com/primerdw/bartender-api/internal/repository"
	"github.com/primerdw/bartender-api/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configure the HTTP surface.
type Options struct {
	Prefix       string
	ExposeErrors bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Deps are the collaborators the routes run on. All of them are safe for
// concurrent use and live for the whole process.
type Deps struct {
	Log       *zap.Logger
	Keys      middleware.KeyValidator
	Lookups   repository.LookupRepository
	Resources []lookup.Resource
	Audit     Recorder
	Ready     []ReadyCheck
}

type Server struct{ e *echo.Echo }

func NewServer(opts Options, d Deps) *Server {
	if d.Log == nil {
		d.Log = logger.Log
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	e.HTTPErrorHandler = errorHandler(d.Log, opts.ExposeErrors)
	e.Server.ReadTimeout = opts.ReadTimeout
	e.Server.WriteTimeout = opts.WriteTimeout

	e.Use(
		echoMid.Recover(),
		echoMid.RequestIDWithConfig(echoMid.RequestIDConfig{Generator: util.New}),
		requestLogger(d.Log),
	)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/readyz", readyHandler(d.Ready, d.Log))

	// routes
	authMW := middleware.APIKeyMiddleware(d.Keys)
	g := e.Group(strings.TrimRight(opts.Prefix, "/"))
	for _, res := range d.Resources {
		g.GET(res.Path, lookupHandler(res, d.Lookups), observe(res, d.Audit), authMW)
	}

	return &Server{e: e}
}

func requestLogger(l *zap.Logger) echo.MiddlewareFunc {
	return echoMid.RequestLoggerWithConfig(echoMid.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMid.RequestLoggerValues) error {
			l.Info("request",
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	})
}

// ServeHTTP lets tests drive the router directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

func (s *Server) Start(addr string) error {
	err := s.e.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
