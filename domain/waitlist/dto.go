package waitlist

import (
	"time"

	"github.com/akeren/logfox/pkg/constants"
)

// ========================================
// Request DTOs
// ========================================

type OpenDialogRequest struct {
	Trigger string `json:"trigger" binding:"required,oneof=header hero cta"`
}

// UpdateDraftRequest carries one keystroke's worth of form state. Values are
// stored verbatim, including surrounding whitespace. A non-zero Seq must rise
// with every request; updates at or below the last applied Seq are ignored.
type UpdateDraftRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Seq   uint64  `json:"seq,omitempty"`
}

// SubmitDraftRequest mirrors the browser's required and type=email checks.
type SubmitDraftRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ========================================
// Response DTOs
// ========================================

type DialogView struct {
	SessionID   string `json:"session_id"`
	State       string `json:"state"`
	IsOpen      bool   `json:"is_open"`
	IsSubmitted bool   `json:"is_submitted"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ResetAt     string `json:"reset_at,omitempty"`
	ResetInMS   int64  `json:"reset_in_ms,omitempty"`
}

// ========================================
// Mappers
// ========================================

func ToDialogView(snap Snapshot, now time.Time) DialogView {
	view := DialogView{
		SessionID:   snap.ID,
		State:       snap.State.String(),
		IsOpen:      snap.State.IsOpen(),
		IsSubmitted: snap.State.IsSubmitted(),
		Name:        snap.Name,
		Email:       snap.Email,
	}

	if snap.ResetPending() {
		view.ResetAt = snap.ResetAt.UTC().Format(constants.RFC3339DateTimeFormat)
		view.ResetInMS = max(snap.ResetAt.Sub(now).Milliseconds(), 0)
	}

	return view
}
