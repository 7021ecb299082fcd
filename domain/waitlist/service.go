package waitlist

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/logfox/internal/log"
	apperrors "github.com/akeren/logfox/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/akeren/logfox/domain/waitlist")

type WaitlistService interface {
	// CreateSession starts a closed dialog session for a new page view.
	CreateSession(ctx context.Context) (*DialogView, error)

	// GetSession returns the current view of a session.
	GetSession(ctx context.Context, id string) (*DialogView, error)

	// OpenDialog opens the shared dialog from any of the page's triggers.
	OpenDialog(ctx context.Context, id string, trigger Trigger) (*DialogView, error)

	// UpdateDraft stores the latest field values typed into the open form.
	UpdateDraft(ctx context.Context, id string, req *UpdateDraftRequest) (*DialogView, error)

	// SubmitDraft emits the form to the signup sink and schedules the auto-reset.
	SubmitDraft(ctx context.Context, id string, req *SubmitDraftRequest) (*DialogView, error)

	// DismissDialog closes the dialog without submitting.
	DismissDialog(ctx context.Context, id string) (*DialogView, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository SessionRepository
	now        func() time.Time
}

func NewWaitlistService(logger *log.Logger, repository SessionRepository) WaitlistService {
	return &waitlistService{logger: logger, repository: repository, now: time.Now}
}

func (s *waitlistService) CreateSession(ctx context.Context) (*DialogView, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	session, err := s.repository.Create(ctx)
	if err != nil {
		logger.Error("Failed to create dialog session", "error", err)
		return nil, mapRepositoryError(err)
	}

	logger.Debug("Dialog session created", "session_id", session.ID())
	return s.view(session.Snapshot()), nil
}

func (s *waitlistService) GetSession(ctx context.Context, id string) (*DialogView, error) {
	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.view(session.Snapshot()), nil
}

func (s *waitlistService) OpenDialog(ctx context.Context, id string, trigger Trigger) (*DialogView, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if !trigger.Valid() {
		logger.Error("OpenDialog received unknown trigger", "trigger", trigger)
		return nil, apperrors.NewInvalidRequestError("unknown waitlist trigger", ErrUnknownTrigger)
	}

	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, changed, err := session.Open(trigger)
	if err != nil {
		logger.Error("Failed to open dialog", "session_id", id, "error", err)
		return nil, mapTransitionError(err)
	}

	logger.Info("Dialog open requested", "session_id", id, "trigger", trigger, "changed", changed, "state", snap.State)
	return s.view(snap), nil
}

func (s *waitlistService) UpdateDraft(ctx context.Context, id string, req *UpdateDraftRequest) (*DialogView, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil || (req.Name == nil && req.Email == nil) {
		logger.Error("UpdateDraft received request with no fields to update")
		return nil, apperrors.NewInvalidRequestError("at least one of name or email must be provided", nil)
	}

	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, applied, err := session.UpdateDraft(req.Seq, req.Name, req.Email)
	if err != nil {
		logger.Warn("Rejected draft update", "session_id", id, "error", err)
		return nil, mapTransitionError(err)
	}
	if !applied {
		logger.Debug("Dropped out-of-order draft update", "session_id", id, "seq", req.Seq)
	}

	return s.view(snap), nil
}

func (s *waitlistService) SubmitDraft(ctx context.Context, id string, req *SubmitDraftRequest) (*DialogView, error) {
	ctx, span := tracer.Start(ctx, "waitlist.submit")
	defer span.End()
	span.SetAttributes(attribute.String("waitlist.session_id", id))

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("SubmitDraft received empty request")
		span.SetStatus(codes.Error, "empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	session, err := s.find(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session lookup failed")
		return nil, err
	}

	snap, err := session.SubmitForm(ctx, req.Name, req.Email)
	if err != nil {
		logger.Warn("Rejected waitlist submission", "session_id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission rejected")
		return nil, mapTransitionError(err)
	}

	span.SetAttributes(attribute.String("waitlist.reset_at", snap.ResetAt.UTC().Format(time.RFC3339Nano)))
	logger.Info("Waitlist form submitted", "session_id", id, "reset_at", snap.ResetAt)
	return s.view(snap), nil
}

func (s *waitlistService) DismissDialog(ctx context.Context, id string) (*DialogView, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, changed := session.Dismiss()
	logger.Info("Dialog dismissed", "session_id", id, "changed", changed)

	return s.view(snap), nil
}

func (s *waitlistService) find(ctx context.Context, id string) (*Session, error) {
	session, err := s.repository.Find(ctx, id)
	if err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Dialog session lookup failed", "session_id", id, "error", err)
		return nil, mapRepositoryError(err)
	}

	return session, nil
}

func (s *waitlistService) view(snap Snapshot) *DialogView {
	view := ToDialogView(snap, s.now())
	return &view
}

func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return apperrors.NewNotFoundError("waitlist session not found, please reload the page", err)
	case errors.Is(err, ErrTooManySessions):
		return apperrors.NewTooManyRequestsError("the waitlist is busy, please try again shortly", err)
	case errors.Is(err, ErrRepositoryClosed):
		return apperrors.NewUnavailableError("the waitlist is shutting down, please try again shortly", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewAppError(apperrors.ErrorTypeRequestTimeout, "request was cancelled", err)
	default:
		return apperrors.NewInternalServerError("unable to load waitlist session", err)
	}
}

func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return apperrors.NewConflictError("that action is not available right now", err)
	case errors.Is(err, ErrUnknownTrigger):
		return apperrors.NewInvalidRequestError("unknown waitlist trigger", err)
	case errors.Is(err, ErrSessionClosed):
		return apperrors.NewExpiredError("waitlist session has expired, please reload the page", err)
	default:
		return apperrors.NewInternalServerError("unable to update waitlist session", err)
	}
}
