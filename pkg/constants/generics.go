package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
)

// Waitlist dialog defaults
const (
	// DefaultAutoResetDelayMillis is how long the thank-you message stays up after a submit.
	DefaultAutoResetDelayMillis = 2000
	// DefaultSessionIdleMinutes is how long an untouched dialog session is kept around.
	DefaultSessionIdleMinutes = 30
	// DefaultMaxSessions caps the number of live dialog sessions held in memory.
	DefaultMaxSessions = 10000
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

func DefaultAutoResetDelay() time.Duration {
	return time.Duration(DefaultAutoResetDelayMillis) * time.Millisecond
}

func DefaultSessionIdleTTL() time.Duration {
	return time.Duration(DefaultSessionIdleMinutes) * time.Minute
}

func DefaultSessionSweepInterval() time.Duration {
	return time.Minute
}
