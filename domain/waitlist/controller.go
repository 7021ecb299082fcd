package waitlist

import (
	"time"

	"github.com/akeren/logfox/config/router"
	apperrors "github.com/akeren/logfox/pkg/errors"
	"github.com/akeren/logfox/pkg/ratelimit"
)

const (
	sessionCreationRequestsPerMinute = 30
	// Every keystroke in the form is a draft update.
	draftUpdateRequestsPerMinute = 1200
)

func NewWaitlistController(service WaitlistService) *router.RESTController {
	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist/sessions",
		func(rs *router.RouterService, c *router.RESTController) {
			sessionCreationLimiter := createSessionCreationRateLimiter(rs)
			draftUpdateLimiter := rs.NewRateLimiter(draftUpdateRequestsPerMinute, time.Minute)

			rs.AddPostHandler(c, sessionCreationLimiter, "", createSessionHandler(service))
			rs.AddGetHandler(c, nil, "/:id", getSessionHandler(service))
			rs.AddPostHandler(c, nil, "/:id/open", openDialogHandler(service))
			rs.AddPatchHandler(c, draftUpdateLimiter, "/:id/draft", updateDraftHandler(service))
			rs.AddPostHandler(c, nil, "/:id/submit", submitDraftHandler(service))
			rs.AddPostHandler(c, nil, "/:id/dismiss", dismissDialogHandler(service))
		},
	)
}

func createSessionCreationRateLimiter(routerService *router.RouterService) ratelimit.RateLimiter {
	return routerService.NewRateLimiter(sessionCreationRequestsPerMinute, time.Minute)
}

func createSessionHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.CreateSession(ctx.Request.Context())
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.CreatedResult(response, "Waitlist session")
	}
}

func getSessionHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.GetSession(ctx.Request.Context(), id)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist session retrieved successfully")
	}
}

func openDialogHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req OpenDialogRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)
			return bindFailureResult(err, &req)
		}

		response, err := service.OpenDialog(ctx.Request.Context(), id, Trigger(req.Trigger))
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist dialog opened")
	}
}

func updateDraftHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req UpdateDraftRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)
			return bindFailureResult(err, &req)
		}

		response, err := service.UpdateDraft(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist draft updated")
	}
}

func submitDraftHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req SubmitDraftRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)
			return bindFailureResult(err, &req)
		}

		response, err := service.SubmitDraft(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Thanks for joining the waitlist!")
	}
}

func dismissDialogHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.DismissDialog(ctx.Request.Context(), id)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist dialog dismissed")
	}
}

func bindFailureResult(err error, req any) *router.ServiceResult {
	validationErrors := apperrors.FormatValidationErrors(err, req)
	if len(validationErrors) > 0 {
		return router.BadRequestResult("Invalid request payload", validationErrors)
	}

	return router.BadRequestResult("Invalid request body", nil)
}
