package config

import (
	"context"
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/pkg/constants"
	"github.com/akeren/logfox/pkg/utils"
)

type ApplicationConfig struct {
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error

	cleanups []func() error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	Waitlist          WaitlistSettings
	Site              SiteSettings
}

// WaitlistSettings tunes the in-memory dialog sessions.
type WaitlistSettings struct {
	ResetDelay    time.Duration
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

type SiteSettings struct {
	Name        string
	Title       string
	Description string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests: utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   utils.GetEnvPositiveDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvPositiveDuration("REQUEST_TIMEOUT", 30*time.Second),
		Waitlist: WaitlistSettings{
			ResetDelay:    utils.GetEnvPositiveDuration("WAITLIST_RESET_DELAY", constants.DefaultAutoResetDelay()),
			IdleTTL:       utils.GetEnvPositiveDuration("WAITLIST_SESSION_TTL", constants.DefaultSessionIdleTTL()),
			SweepInterval: utils.GetEnvPositiveDuration("WAITLIST_SWEEP_INTERVAL", constants.DefaultSessionSweepInterval()),
			MaxSessions:   utils.GetEnvPositiveInt("WAITLIST_MAX_SESSIONS", constants.DefaultMaxSessions),
		},
		Site: SiteSettings{
			Name:        utils.GetEnvTrimmed("SITE_NAME"),
			Title:       utils.GetEnvTrimmed("SITE_TITLE"),
			Description: utils.GetEnvTrimmed("SITE_DESCRIPTION"),
		},
	}
}

// AddCleanup registers fn to run during Cleanup, before the router and cache are released.
func (ac *ApplicationConfig) AddCleanup(fn func() error) {
	ac.cleanups = append(ac.cleanups, fn)
}

func (ac *ApplicationConfig) Cleanup() {
	for i := len(ac.cleanups) - 1; i >= 0; i-- {
		if err := ac.cleanups[i](); err != nil {
			ac.Logger.Error("Cleanup hook failed", "error", err)
		}
	}
	ac.cleanups = nil

	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		_ = CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	appConfig := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)

	if cache == nil && !IsDevelopmentEnv(GetAppEnv()) {
		logger.Warn("Redis is not configured; rate limits are enforced per process", "app_env", GetAppEnv())
	}

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully",
		"waitlist_reset_delay", appConfig.Waitlist.ResetDelay.String(),
		"waitlist_max_sessions", appConfig.Waitlist.MaxSessions,
	)

	return &ApplicationConfig{
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
