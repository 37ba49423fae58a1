package validation

import (
	"sync"
	"time"
)

// RateLimitValidator rejects a message if less than MinInterval has
// elapsed since the same peer's last accepted message. The peer's last
// timestamp is recorded only when the check passes, so a rejected attempt
// never resets the window.
type RateLimitValidator struct {
	MinInterval time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// DefaultRateLimitValidator returns a RateLimitValidator with the spec's
// default minimum interval of one second.
func DefaultRateLimitValidator() *RateLimitValidator {
	return NewRateLimitValidator(time.Second)
}

// NewRateLimitValidator builds a RateLimitValidator with the given minimum
// interval between accepted messages from the same peer.
func NewRateLimitValidator(minInterval time.Duration) *RateLimitValidator {
	return &RateLimitValidator{MinInterval: minInterval, last: make(map[string]time.Time)}
}

// Validate implements Validator.
func (v *RateLimitValidator) Validate(ctx Context) Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	if last, ok := v.last[ctx.Peer]; ok {
		if ctx.Timestamp.Sub(last) < v.MinInterval {
			return Fail("you are sending messages too fast", CodeResourceExhausted)
		}
	}

	v.last[ctx.Peer] = ctx.Timestamp
	return OK
}
