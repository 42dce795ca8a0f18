package http

import (
	"net/http"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// Options configures NewRouter.
type Options struct {
	// JWTSecret enables bearer authentication of /api/v1 when non-empty.
	JWTSecret []byte
	AgentID   kernel.UUID
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	// LogLevel sets echo's own logger: debug, info, warn, error or off.
	LogLevel string
	Logger   *zap.Logger
}

// NewRouter builds the echo instance with every route registered.
func NewRouter(s *Server, opts Options) (*echo.Echo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "http"))

	doc, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	validate, err := ValidateRequests(doc)
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(echoLogLevel(opts.LogLevel))
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID))
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")
	if len(opts.JWTSecret) > 0 {
		api.Use(RequireAgent(opts.JWTSecret, opts.AgentID))
	}
	api.Use(validate)

	api.GET("/offers", s.GetOffers)
	api.POST("/offers/:orderId/accept", s.AcceptOffer)
	api.POST("/offers/:orderId/decline", s.DeclineOffer)
	api.GET("/orders", s.GetOrders)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/status", s.AdvanceOrder)
	api.POST("/orders/:orderId/otp", s.RequestOTP)
	api.GET("/notifications", s.GetNotifications)
	api.DELETE("/notifications", s.ClearNotifications)
	api.GET("/earnings", s.GetEarnings)
	api.GET("/earnings/summary", s.GetEarningsSummary)
	api.POST("/earnings/settlements", s.SettlePayout)

	return e, nil
}

func echoLogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
