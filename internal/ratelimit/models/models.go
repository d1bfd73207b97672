package models

import "time"

// EndpointClass groups routes that share one request budget.
type EndpointClass string

const (
	// ClassVerify: listing submissions, keyed by user.
	ClassVerify EndpointClass = "verify"
	// ClassRegister: admin registrations, keyed by user.
	ClassRegister EndpointClass = "register"
	// ClassCompare: public document comparison, keyed by client IP.
	ClassCompare EndpointClass = "compare"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassVerify, ClassRegister, ClassCompare:
		return true
	}
	return false
}

// Limit is a sliding-window budget.
type Limit struct {
	Requests int
	Window   time.Duration
}

type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RetryAfterSeconds rounds up so a client waiting the advertised time is never early.
func RetryAfterSeconds(allowed bool, now, resetAt time.Time) int {
	if allowed || !resetAt.After(now) {
		return 0
	}
	d := resetAt.Sub(now)
	seconds := int(d / time.Second)
	if d%time.Second != 0 {
		seconds++
	}
	return seconds
}
