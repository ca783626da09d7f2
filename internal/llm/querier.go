package llm

import (
	"context"
	"time"
)

// Query policy constants.
const (
	// QueryTimeout is the per-attempt budget for a completion request.
	QueryTimeout = 5 * time.Second
	// MaxRetries is how many times a failed attempt is retried.
	MaxRetries = 2
	// BackoffBase is the delay before the first retry; it doubles per retry.
	BackoffBase = 500 * time.Millisecond
)

// Result is the outcome of one asynchronous query, delivered through the
// querier's result channel and consumed by Poll.
type Result struct {
	Seq      uint64  // Request sequence number
	Text     string  // Raw completion text on success
	Err      error   // Final error after retries, nil on success
	Attempts []error // Per-attempt failures, in order (nil entries omitted)
	Fallback bool    // True when the circuit was open and no call was made
}

// Querier runs at most one model query at a time, off the frame loop's
// critical path. All methods must be called from the frame loop goroutine;
// only the internal worker goroutine runs elsewhere, and it communicates
// exclusively through the buffered result channel.
type Querier struct {
	client  *Client
	breaker *Breaker

	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration

	seq      uint64
	inFlight bool
	results  chan Result
}

// NewQuerier wraps the client with the retry/backoff/circuit-breaker policy.
func NewQuerier(client *Client) *Querier {
	return &Querier{
		client:      client,
		breaker:     NewBreaker(BreakerThreshold, BreakerCooldown),
		timeout:     QueryTimeout,
		maxRetries:  MaxRetries,
		backoffBase: BackoffBase,
		// Buffered so abandoned workers can deliver a stale result and
		// exit without a receiver.
		results: make(chan Result, 4),
	}
}

// Busy reports whether a query is outstanding.
func (q *Querier) Busy() bool {
	return q.inFlight
}

// BreakerState exposes the circuit state for status display.
func (q *Querier) BreakerState() BreakerState {
	return q.breaker.State()
}

// Begin starts an asynchronous query for the prompt messages. Returns the
// request sequence number and false when a query is already in flight.
// When the circuit is open, no call is made and a Fallback result is
// queued for the next Poll.
func (q *Querier) Begin(messages []Message) (uint64, bool) {
	if q.inFlight {
		return 0, false
	}

	q.seq++
	q.inFlight = true
	seq := q.seq

	if !q.breaker.Allow() {
		q.results <- Result{Seq: seq, Err: ErrQueryUnavailable, Fallback: true}
		return seq, true
	}

	go q.run(seq, messages)
	return seq, true
}

// run executes the attempt loop in the background and reports once.
func (q *Querier) run(seq uint64, messages []Message) {
	var attempts []error

	for attempt := 0; attempt <= q.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(q.backoffBase << (attempt - 1))
		}

		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		text, err := q.client.Complete(ctx, messages)
		cancel()

		if err == nil {
			q.results <- Result{Seq: seq, Text: text, Attempts: attempts}
			return
		}
		attempts = append(attempts, err)
	}

	q.results <- Result{Seq: seq, Err: attempts[len(attempts)-1], Attempts: attempts}
}

// Poll checks for a completed result without blocking. Results whose
// sequence number is not the current request are stale and silently
// dropped. Breaker accounting happens here, on the frame loop goroutine.
func (q *Querier) Poll() (Result, bool) {
	for {
		select {
		case res := <-q.results:
			if res.Seq != q.seq {
				continue // Stale: superseded or expired request.
			}
			q.inFlight = false
			if !res.Fallback {
				// Attempt failures precede any final success, so count
				// them first; a success then resets the streak.
				for range res.Attempts {
					q.breaker.Failure()
				}
				if res.Err == nil {
					q.breaker.Success()
				}
			}
			return res, true
		default:
			return Result{}, false
		}
	}
}

// Expire abandons the in-flight request: its eventual result will carry a
// stale sequence number and be dropped by Poll. The expiry counts as one
// failure toward the breaker.
func (q *Querier) Expire() {
	if !q.inFlight {
		return
	}
	q.seq++
	q.inFlight = false
	q.breaker.Failure()
}
