package waitlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akeren/logfox/internal/models"
	"github.com/akeren/logfox/pkg/constants"
)

// DialogState is the single source of truth for the waitlist dialog. Whether
// the dialog is open and whether the form has been submitted are derived from
// it, so a submitted-but-closed dialog cannot be represented.
type DialogState int

const (
	StateClosed DialogState = iota
	StateOpenEmpty
	StateOpenFilled
	StateOpenSubmitted
)

func (s DialogState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenEmpty:
		return "open_empty"
	case StateOpenFilled:
		return "open_filled"
	case StateOpenSubmitted:
		return "open_submitted"
	default:
		return fmt.Sprintf("DialogState(%d)", int(s))
	}
}

func (s DialogState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s DialogState) IsOpen() bool {
	return s != StateClosed
}

func (s DialogState) IsSubmitted() bool {
	return s == StateOpenSubmitted
}

// Trigger names one of the page's "join waitlist" affordances. All of them
// drive the same session.
type Trigger string

const (
	TriggerHeader Trigger = "header"
	TriggerHero   Trigger = "hero"
	TriggerCTA    Trigger = "cta"
)

var Triggers = []Trigger{TriggerHeader, TriggerHero, TriggerCTA}

func (t Trigger) Valid() bool {
	for _, known := range Triggers {
		if t == known {
			return true
		}
	}
	return false
}

var (
	ErrInvalidTransition = errors.New("invalid dialog transition")
	ErrUnknownTrigger    = errors.New("unknown dialog trigger")
	ErrSessionClosed     = errors.New("dialog session is closed")
)

// Transition describes one state change, reported to the session's observer.
type Transition struct {
	From  DialogState
	To    DialogState
	Cause string
}

const (
	CauseOpen      = "open"
	CauseDraft     = "draft"
	CauseSubmit    = "submit"
	CauseAutoReset = "auto_reset"
	CauseDismiss   = "dismiss"
)

type SessionOptions struct {
	// ResetDelay is how long the thank-you message stays before the dialog
	// closes and the draft is cleared.
	ResetDelay time.Duration
	Sink       Sink
	// OnTransition is called with the session lock held and must not block.
	OnTransition func(Transition)
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID      string
	State   DialogState
	Name    string
	Email   string
	ResetAt time.Time
}

// ResetPending reports whether an auto-reset is scheduled.
func (s Snapshot) ResetPending() bool {
	return !s.ResetAt.IsZero()
}

// Session is one page view's waitlist dialog together with its form draft.
// Every method is safe for concurrent use; HTTP handlers and the auto-reset
// timer are serialized on mu.
type Session struct {
	id         string
	resetDelay time.Duration
	sink       Sink
	observe    func(Transition)

	mu         sync.Mutex
	state      DialogState
	name       string
	email      string
	resetTimer *time.Timer
	resetAt    time.Time
	generation uint64
	draftSeq   uint64
	lastSeen   time.Time
	closed     bool
}

func NewSession(id string, opts SessionOptions) *Session {
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = constants.DefaultAutoResetDelay()
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}

	return &Session{
		id:         id,
		resetDelay: opts.ResetDelay,
		sink:       opts.Sink,
		observe:    opts.OnTransition,
		state:      StateClosed,
		lastSeen:   time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Open moves a closed dialog to OpenEmpty, or to OpenFilled when a draft kept
// from an earlier dismissal is complete. Opening an open dialog changes nothing
// and reports changed=false.
func (s *Session) Open(trigger Trigger) (snap Snapshot, changed bool, err error) {
	if !trigger.Valid() {
		return s.Snapshot(), false, fmt.Errorf("%w: %q", ErrUnknownTrigger, trigger)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.snapshotLocked(), false, ErrSessionClosed
	}
	if s.state.IsOpen() {
		return s.snapshotLocked(), false, nil
	}

	s.transitionLocked(draftState(s.name, s.email), CauseOpen)
	return s.snapshotLocked(), true, nil
}

// SetName stores v exactly as typed.
func (s *Session) SetName(v string) (Snapshot, error) {
	snap, _, err := s.UpdateDraft(0, &v, nil)
	return snap, err
}

// SetEmail stores v exactly as typed.
func (s *Session) SetEmail(v string) (Snapshot, error) {
	snap, _, err := s.UpdateDraft(0, nil, &v)
	return snap, err
}

// UpdateDraft applies whichever fields are non-nil in one step. A seq of zero
// is always applied. Otherwise an update whose seq is not above the last
// applied one arrived late and is dropped, leaving the draft unchanged.
func (s *Session) UpdateDraft(seq uint64, name, email *string) (snap Snapshot, applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditableLocked(); err != nil {
		return s.snapshotLocked(), false, err
	}

	if seq != 0 {
		if seq <= s.draftSeq {
			return s.snapshotLocked(), false, nil
		}
		s.draftSeq = seq
	}

	s.applyDraftLocked(name, email)
	return s.snapshotLocked(), true, nil
}

// Submit hands the draft to the sink and enters OpenSubmitted. Only a filled,
// unsubmitted dialog can be submitted.
func (s *Session) Submit(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.submitLocked(ctx); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}

// SubmitForm writes the submitted field values into the draft and submits,
// all under one lock so no other event can interleave.
func (s *Session) SubmitForm(ctx context.Context, name, email string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditableLocked(); err != nil {
		return s.snapshotLocked(), err
	}

	s.applyDraftLocked(&name, &email)

	if err := s.submitLocked(ctx); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}

// Dismiss closes the dialog. Before submission the draft is kept so reopening
// shows it again. After submission the pending reset runs immediately and its
// timer is cancelled.
func (s *Session) Dismiss() (snap Snapshot, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return s.snapshotLocked(), false
	case StateOpenSubmitted:
		s.resetLocked(CauseDismiss)
	default:
		s.transitionLocked(StateClosed, CauseDismiss)
	}

	return s.snapshotLocked(), true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Touch records activity for idle eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close stops any pending reset. A closed session rejects further events.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cancelResetLocked()
}

func (s *Session) requireEditableLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateOpenEmpty && s.state != StateOpenFilled {
		return fmt.Errorf("%w: cannot edit the form while %s", ErrInvalidTransition, s.state)
	}
	return nil
}

func (s *Session) applyDraftLocked(name, email *string) {
	if name != nil {
		s.name = *name
	}
	if email != nil {
		s.email = *email
	}

	if next := draftState(s.name, s.email); next != s.state {
		s.transitionLocked(next, CauseDraft)
	}
}

func (s *Session) submitLocked(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateOpenFilled {
		return fmt.Errorf("%w: cannot submit while %s", ErrInvalidTransition, s.state)
	}

	now := time.Now()
	s.sink.Emit(ctx, models.Signup{
		SessionID:   s.id,
		Name:        s.name,
		Email:       s.email,
		SubmittedAt: now,
	})

	s.transitionLocked(StateOpenSubmitted, CauseSubmit)

	s.generation++
	generation := s.generation
	s.resetAt = now.Add(s.resetDelay)
	s.resetTimer = time.AfterFunc(s.resetDelay, func() {
		s.autoReset(generation)
	})

	return nil
}

func (s *Session) autoReset(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A dismissal, eviction or newer submit has already superseded this timer.
	if s.closed || generation != s.generation || s.state != StateOpenSubmitted {
		return
	}

	s.resetLocked(CauseAutoReset)
}

// resetLocked closes the dialog and clears the draft as one update.
func (s *Session) resetLocked(cause string) {
	s.cancelResetLocked()
	s.name = ""
	s.email = ""
	s.transitionLocked(StateClosed, cause)
}

func (s *Session) cancelResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.resetAt = time.Time{}
	s.generation++
}

func (s *Session) transitionLocked(to DialogState, cause string) {
	from := s.state
	s.state = to

	if s.observe != nil && from != to {
		s.observe(Transition{From: from, To: to, Cause: cause})
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:      s.id,
		State:   s.state,
		Name:    s.name,
		Email:   s.email,
		ResetAt: s.resetAt,
	}
}

func draftState(name, email string) DialogState {
	if name != "" && email != "" {
		return StateOpenFilled
	}
	return StateOpenEmpty
}
