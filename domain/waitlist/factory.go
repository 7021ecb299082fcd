package waitlist

import (
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/internal/log"
	"github.com/prometheus/client_golang/prometheus"
)

type Settings struct {
	ResetDelay    time.Duration
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

type WaitlistServiceFactory interface {
	CreateRepository() SessionRepository
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

// DefaultWaitlistServiceFactory builds one repository and hands the same
// instance to every service and controller it creates.
type DefaultWaitlistServiceFactory struct {
	settings Settings
	logger   *log.Logger
	sink     Sink
	registry prometheus.Registerer

	repository SessionRepository
}

// NewWaitlistServiceFactory wires submissions to sink. A nil registry leaves
// the dialog metrics unexported.
func NewWaitlistServiceFactory(settings Settings, logger *log.Logger, sink Sink, registry prometheus.Registerer) WaitlistServiceFactory {
	if sink == nil {
		sink = MultiSink{NewLogSink(logger), SpanEventSink{}}
	}

	return &DefaultWaitlistServiceFactory{
		settings: settings,
		logger:   logger,
		sink:     sink,
		registry: registry,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateRepository() SessionRepository {
	if f.repository != nil {
		return f.repository
	}

	var repository SessionRepository
	metrics := newDialogMetrics(f.registry, func() int { return repository.Count() })

	repository = NewMemorySessionRepository(RepositoryConfig{
		IdleTTL:       f.settings.IdleTTL,
		SweepInterval: f.settings.SweepInterval,
		MaxSessions:   f.settings.MaxSessions,
		Logger:        f.logger,
		Session: SessionOptions{
			ResetDelay:   f.settings.ResetDelay,
			Sink:         f.sink,
			OnTransition: metrics.observe,
		},
	})

	f.repository = repository
	return repository
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	return NewWaitlistService(f.logger, f.CreateRepository())
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService())
}
