package monitoring

import (
	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/internal/log"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	logger   *log.Logger
	cache    Cache
	sessions SessionCounter
}

// NewMonitoringControllerFactory accepts a nil cache when Redis is not configured.
func NewMonitoringControllerFactory(logger *log.Logger, cache Cache, sessions SessionCounter) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		logger:   logger,
		cache:    cache,
		sessions: sessions,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.logger, f.cache, f.sessions)
}
