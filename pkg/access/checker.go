package access

import (
	"context"
	"time"
)

// DefaultSettleDelay is how long Checker.Check waits before evaluating.
// Right after a cold start the session may be authenticated while the
// profile is still being decoded; deciding immediately would flash a denial
// that resolves itself a moment later. The delay smooths that over; it is
// presentation polish, not a security boundary.
const DefaultSettleDelay = 100 * time.Millisecond

// Result is the in-page variant's answer. While Loading is true, HasAccess
// is not yet meaningful.
type Result struct {
	HasAccess bool
	Loading   bool
	Missing   []string
}

// Checker is the in-page variant of the guard: instead of a navigation
// decision it returns a Result and leaves the denial presentation to the
// caller.
type Checker struct {
	guard *Guard

	// SettleDelay is the debounce before evaluation. Zero means
	// DefaultSettleDelay; negative disables the delay.
	SettleDelay time.Duration
}

// NewChecker creates an in-page access checker over the guard.
func NewChecker(guard *Guard) *Checker {
	return &Checker{guard: guard}
}

// Check waits out the settle delay, then evaluates the requirement. The
// timer is always released; if ctx is canceled while waiting, Check returns
// a loading Result and ctx.Err() without evaluating.
func (c *Checker) Check(ctx context.Context, req Requirement) (Result, error) {
	delay := c.SettleDelay
	if delay == 0 {
		delay = DefaultSettleDelay
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{Loading: true}, ctx.Err()
		case <-timer.C:
		}
	}

	decision := c.guard.Evaluate(req)
	switch decision.State {
	case Loading:
		return Result{Loading: true}, nil
	case Granted:
		return Result{HasAccess: true}, nil
	default:
		return Result{Missing: decision.Missing}, nil
	}
}
