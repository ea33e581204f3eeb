// Package retry holds the backoff policy used by the API transport.
package retry

import (
	"fmt"
	"time"
)

const (
	DefaultMaxRetries    = 3
	DefaultDelay         = 2 * time.Second
	DefaultExtendedDelay = 30 * time.Second
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	MaxRetries    int           // retry attempts after the first failure
	Delay         time.Duration // standard wait between attempts
	ExtendedDelay time.Duration // one-time cool-down when the server asks for it
}

// DefaultPolicy returns the transport defaults (3 retries, 2s delay, 30s extended delay).
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, Delay: DefaultDelay, ExtendedDelay: DefaultExtendedDelay}
}

// NewPolicy builds a policy from raw values; negative values fall back to defaults.
// Zero is a valid delay (retry immediately).
func NewPolicy(maxRetries int, delay, extended time.Duration) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if delay >= 0 {
		p.Delay = delay
	}
	if extended >= 0 {
		p.ExtendedDelay = extended
	}
	return p
}

// Exhausted reports whether a call that has failed `failures` times must give up.
func (p Policy) Exhausted(failures int) bool {
	return failures > p.MaxRetries
}

// Backoff returns the wait before the next attempt and whether it is the extended one.
// wantsExtended reports that the failed attempt asked for a longer cool-down; used reports
// that the extended wait was already spent during the current call.
func (p Policy) Backoff(wantsExtended, used bool) (time.Duration, bool) {
	if wantsExtended && !used {
		return p.ExtendedDelay, true
	}
	return p.Delay, false
}

// Attempts is the maximum number of requests a single call may issue.
func (p Policy) Attempts() int {
	return p.MaxRetries + 1
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if p.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if p.ExtendedDelay < 0 {
		return fmt.Errorf("extended delay cannot be negative")
	}
	return nil
}
