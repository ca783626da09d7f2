package llm

import "time"

// Breaker policy constants.
const (
	// BreakerThreshold is the consecutive-failure count that opens the circuit.
	BreakerThreshold = 3
	// BreakerCooldown is how long the circuit stays open before a probe.
	BreakerCooldown = 15 * time.Second
)

// BreakerState is the circuit breaker's explicit state machine.
type BreakerState uint8

const (
	BreakerClosed   BreakerState = iota // Normal operation
	BreakerOpen                         // Calls skipped until cooldown elapses
	BreakerHalfOpen                     // One probe call allowed through
)

// String returns the lowercase state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "closed"
}

// Breaker tracks consecutive query failures across decision cycles and cuts
// off network calls after too many in a row. Not safe for concurrent use;
// it is owned by the querier, which serializes access.
type Breaker struct {
	threshold int
	cooldown  time.Duration

	state    BreakerState
	failures int
	openedAt time.Time

	now func() time.Time // Injected for tests.
}

// NewBreaker creates a closed breaker with the given policy.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		state:     BreakerClosed,
		now:       time.Now,
	}
}

// State returns the current breaker state, advancing Open to HalfOpen when
// the cooldown has elapsed.
func (b *Breaker) State() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = BreakerHalfOpen
	}
	return b.state
}

// Allow reports whether a call may be attempted now. In HalfOpen it permits
// exactly one probe; further calls are rejected until the probe resolves.
func (b *Breaker) Allow() bool {
	switch b.State() {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		// Treat the probe as provisionally in flight: re-open so no second
		// probe slips through until Success or Failure resolves this one.
		b.state = BreakerOpen
		b.openedAt = b.now()
		return true
	default:
		return false
	}
}

// Success records a successful call, closing the circuit and resetting the
// consecutive-failure count.
func (b *Breaker) Success() {
	b.state = BreakerClosed
	b.failures = 0
}

// Failure records a failed call attempt. Once the consecutive count reaches
// the threshold the circuit opens.
func (b *Breaker) Failure() {
	b.failures++
	if b.failures >= b.threshold {
		b.state = BreakerOpen
		b.openedAt = b.now()
	}
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	return b.failures
}
