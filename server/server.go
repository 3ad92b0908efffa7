package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hrygo/linguapet/internal/logging"
	"github.com/hrygo/linguapet/internal/profile"
	apiv1 "github.com/hrygo/linguapet/server/router/api/v1"
)

// rateLimitBurst is the request burst allowed per client on top of the
// steady rate configured in the profile.
const rateLimitBurst = 20

// maxBodySize rejects oversized request bodies before they are bound.
const maxBodySize = "16K"

type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
}

// NewServer builds the HTTP API. metrics may be nil, in which case
// /metrics is not mounted.
func NewServer(ctx context.Context, profile *profile.Profile, brain apiv1.Brain, metrics http.Handler) (*Server, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if brain == nil {
		return nil, errors.New("brain is nil")
	}

	s := &Server{Profile: profile}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: shortuuid.New,
	}))
	echoServer.Use(requestContextLogger)
	echoServer.Use(requestLogger())
	echoServer.Use(middleware.BodyLimit(maxBodySize))
	if profile.RateLimit > 0 {
		echoServer.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/healthz" || c.Path() == "/metrics"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(profile.RateLimit),
				Burst:     rateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}
	s.echoServer = echoServer

	if metrics != nil {
		echoServer.GET("/metrics", echo.WrapHandler(metrics))
	}

	apiV1Service := apiv1.NewAPIV1Service(profile, brain)
	apiV1Service.RegisterRoutes(ctx, echoServer)

	return s, nil
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("http server starting", "address", address)
	if err := s.echoServer.Start(address); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return errors.Wrap(err, "failed to start http server")
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	slog.Info("server stopped properly")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// requestContextLogger tags the request context logger with the request id.
func requestContextLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		logger := slog.Default().With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
		c.SetRequest(req.WithContext(logging.ToContext(req.Context(), logger)))
		return next(c)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				slog.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Debug("request", attrs...)
			return nil
		},
	})
}
