package models

import "time"

// Signup is the record handed to signup sinks when a waitlist form is submitted.
// It is never stored.
type Signup struct {
	SessionID   string    `json:"session_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// LogAttrs returns the record as alternating key/value pairs for structured logging.
func (s Signup) LogAttrs() []any {
	return []any{
		"session_id", s.SessionID,
		"name", s.Name,
		"email", s.Email,
		"submitted_at", s.SubmittedAt,
	}
}
