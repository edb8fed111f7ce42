package main

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/logger"
	"github.com/bizdesk/backend/internal/infrastructure/metrics"
	"github.com/bizdesk/backend/internal/interfaces/http/handler"
	"github.com/bizdesk/backend/internal/interfaces/http/middleware"
	"github.com/bizdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const (
	metricsPath   = "/metrics"
	websocketPath = "/ws"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (a *app) newEngine(s *services, m *metrics.Metrics) *gin.Engine {
	cfg, log := a.cfg, a.log

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()

	jwtCfg := middleware.DefaultJWTConfig(a.jwt)
	jwtCfg.TokenBlacklist = a.blacklist
	jwtCfg.Logger = log
	jwtCfg.SkipPaths = append(jwtCfg.SkipPaths, websocketPath)

	// Order matters: request ID and recovery first, then logging, then
	// cross-cutting headers, then tracing and authentication.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure(security))
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   []string{"/health", metricsPath},
	}))
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(middleware.HTTPMetrics(m, metricsPath))
	}
	engine.Use(middleware.JWTAuth(jwtCfg))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.AuditSource())
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))

	checks := map[string]handler.Pinger{"database": a.db}
	if a.stores.Client != nil {
		checks["redis"] = redisPinger{client: a.stores.Client}
	}
	engine.GET("/health", handler.NewSystemHandler(version, checks).Health)

	if cfg.Telemetry.MetricsEnabled {
		engine.GET(metricsPath, gin.WrapH(m.Handler()))
	}
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Browsers cannot set headers on a websocket upgrade
	wsAuth := middleware.DefaultJWTConfig(a.jwt)
	wsAuth.SkipPaths = nil
	wsAuth.SkipPathPrefixes = nil
	wsAuth.TokenBlacklist = a.blacklist
	wsAuth.QueryParam = "access_token"
	wsAuth.Logger = log
	engine.GET(websocketPath, middleware.JWTAuth(wsAuth), handler.NewRealtimeHandler(a.hub).Connect)

	apiMiddleware := []gin.HandlerFunc{middleware.TrackValidationFailures(s.alerts, m)}
	if cfg.HTTP.RateLimitEnabled {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimit > 0 {
		authLimit = middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, time.Minute))
	}

	groups := router.APIGroups(a.handlers(s, authLimit))
	router.NewRouter(engine, router.WithMiddleware(apiMiddleware...)).
		Register(router.Registrars(groups)...).
		Setup()

	for _, g := range groups {
		log.Debug("Routes registered", zap.String("domain", g.Name()), zap.Int("routes", len(g.Routes())))
	}
	return engine
}
