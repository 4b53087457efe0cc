package router

import (
	"github.com/gin-gonic/gin"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/motoshop/backend/internal/infrastructure/logger"
	"github.com/motoshop/backend/internal/infrastructure/telemetry"
	"github.com/motoshop/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineOptions configures the gin engine and its middleware chain
type EngineOptions struct {
	ServiceName    string
	HTTP           config.HTTPConfig
	TracingEnabled bool
	Meters         *telemetry.MeterProvider
	Logger         *zap.Logger
}

// NewEngine builds a gin engine with the standard middleware chain. The
// returned stop func releases the rate limiter sweeper.
func NewEngine(opts EngineOptions) (*gin.Engine, func(), error) {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, nil, err
	}
	middleware.SetupValidator()

	engine.Use(
		logger.Recovery(opts.Logger),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: opts.ServiceName, Enabled: opts.TracingEnabled}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(opts.Logger),
		middleware.HTTPMetrics(opts.Meters, opts.Logger),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfigFromSettings(opts.HTTP)),
		middleware.Timeout(opts.HTTP.RequestTimeout),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	stop := func() {}
	if opts.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		stop = limiter.Stop
	}
	return engine, stop, nil
}
