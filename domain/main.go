package domain

import (
	"github.com/akeren/logfox/config"
	"github.com/akeren/logfox/domain/landing"
	"github.com/akeren/logfox/domain/monitoring"
	"github.com/akeren/logfox/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	settings := appConfig.Config.Waitlist

	waitlistFactory := waitlist.NewWaitlistServiceFactory(waitlist.Settings{
		ResetDelay:    settings.ResetDelay,
		IdleTTL:       settings.IdleTTL,
		SweepInterval: settings.SweepInterval,
		MaxSessions:   settings.MaxSessions,
	}, appConfig.Logger, nil, appConfig.RouterService.MetricsRegisterer())

	repository := waitlistFactory.CreateRepository()
	appConfig.AddCleanup(repository.Close)

	site := appConfig.Config.Site
	appConfig.RouterService.MountController(landing.NewLandingController(landing.Settings{
		SiteName:    site.Name,
		Title:       site.Title,
		Description: site.Description,
	}, waitlistFactory.CreateService()))
	appConfig.RouterService.MountController(waitlistFactory.CreateController())

	var cache monitoring.Cache
	if appConfig.Cache != nil {
		cache = appConfig.Cache
	}
	appConfig.RouterService.MountController(
		monitoring.NewMonitoringControllerFactory(appConfig.Logger, cache, repository).CreateController(),
	)
}
