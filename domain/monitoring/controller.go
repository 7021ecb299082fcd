package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/internal/log"
	"github.com/google/uuid"
)

const (
	healthRequestsPerMinute = 10
	cacheProbeTTL           = 10 * time.Second
	healthCheckTimeout      = 2 * time.Second
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// SessionCounter reports how many waitlist dialog sessions are live.
type SessionCounter interface {
	Count() int
}

type HealthStatus struct {
	Cache    int `json:"cache"`    // 1 = healthy, 0 = unhealthy/not configured
	Sessions int `json:"sessions"` // live dialog sessions
	Uptime   int `json:"uptime"`   // uptime in seconds
}

type MonitoringController struct {
	logger    *log.Logger
	cache     Cache
	sessions  SessionCounter
	startTime time.Time
}

func NewMonitoringController(logger *log.Logger, cache Cache, sessions SessionCounter) *router.RESTController {
	ctrl := &MonitoringController{
		logger:    logger,
		cache:     cache,
		sessions:  sessions,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/health",
		func(routerService *router.RouterService, controller *router.RESTController) {
			controller.RateLimitWith(routerService, routerService.NewRateLimiter(healthRequestsPerMinute, time.Minute))

			routerService.AddGetHandler(controller, nil, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthStatus := ctrl.performHealthChecks(ctx, logger)

	return router.OKResult(healthStatus, "logfox health check completed")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	checkCacheConnectivity(ctx, ctrl, &status, logger)

	if ctrl.sessions != nil {
		status.Sessions = ctrl.sessions.Count()
	}

	return status
}

func checkCacheConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.cache == nil {
		status.Cache = 0 // Cache not configured
		logger.Info("Cache not configured, cache health check skipped")
		return
	}

	if err := ctrl.checkCache(ctx); err != nil {
		status.Cache = 0
		logger.Error("Cache health check failed", "error", err)
		return
	}

	status.Cache = 1
	logger.Info("Cache health check passed")
}

// checkCache pings and then round-trips a short-lived probe key.
func (ctrl *MonitoringController) checkCache(ctx context.Context) error {
	if err := ctrl.cache.Ping(ctx); err != nil {
		return err
	}

	key := "health:probe:" + uuid.NewString()
	want := time.Now().UTC().Format(time.RFC3339Nano)

	if err := ctrl.cache.Set(ctx, key, want, cacheProbeTTL); err != nil {
		return err
	}
	defer func() {
		if err := ctrl.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			ctrl.logger.Warn("Failed to delete cache probe key", "key", key, "error", err)
		}
	}()

	got, err := ctrl.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("cache probe mismatch: got %q", got)
	}

	return nil
}
