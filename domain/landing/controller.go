package landing

import (
	"net/http"
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/domain/waitlist"
	"github.com/akeren/logfox/internal/components"
	apperrors "github.com/akeren/logfox/pkg/errors"
	"github.com/akeren/logfox/web"
)

// Each page view creates a dialog session, so page loads share a budget.
const pageViewsPerMinute = 60

type Settings struct {
	SiteName    string
	Title       string
	Description string
}

func NewLandingController(settings Settings, service waitlist.WaitlistService) *router.RESTController {
	return router.NewRESTController(
		"LandingController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			pageLimiter := rs.NewRateLimiter(pageViewsPerMinute, time.Minute)

			rs.AddPageHandler(c, pageLimiter, "", landingPageHandler(settings, service, time.Now))
			rs.AddAssetHandler(c, nil, "static", web.StaticHTTP())
		},
	)
}

func landingPageHandler(settings Settings, service waitlist.WaitlistService, now func() time.Time) router.PageFunction {
	return func(ctx *router.RequestContext) *router.PageResult {
		logger := router.GetLogger(ctx)

		status := http.StatusOK
		dialog := components.DialogProps{State: waitlist.StateClosed.String()}

		view, err := service.CreateSession(ctx.Request.Context())
		if err != nil {
			// The page still renders; the dialog reports the failure when used.
			logger.Error("Failed to create dialog session for page view", "error", err)
			status = apperrors.HTTPStatusCode(err)
		} else {
			dialog = DialogPropsFromView(view)
		}

		return &router.PageResult{
			StatusCode: status,
			Node: components.LandingPage(components.PageConfig{
				SiteName:    settings.SiteName,
				Title:       settings.Title,
				Description: settings.Description,
				Year:        now().Year(),
			}, dialog),
		}
	}
}

func DialogPropsFromView(view *waitlist.DialogView) components.DialogProps {
	return components.DialogProps{
		SessionID: view.SessionID,
		State:     view.State,
		Open:      view.IsOpen,
		Submitted: view.IsSubmitted,
		Name:      view.Name,
		Email:     view.Email,
		ResetInMS: view.ResetInMS,
	}
}
