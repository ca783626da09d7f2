package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestQuerier returns a querier with tight timings against the given
// handler.
func newTestQuerier(t *testing.T, handler http.HandlerFunc) *Querier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	q := NewQuerier(NewClient(srv.URL, "test-model"))
	q.timeout = 100 * time.Millisecond
	q.maxRetries = 2
	q.backoffBase = time.Millisecond
	return q
}

func completionHandler(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse{}
		resp.Message.Content = text
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// awaitResult polls until the querier delivers a result or the deadline
// passes.
func awaitResult(t *testing.T, q *Querier, deadline time.Duration) Result {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if res, ok := q.Poll(); ok {
			return res
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no result before deadline")
	return Result{}
}

func TestQuerierSuccess(t *testing.T) {
	q := newTestQuerier(t, completionHandler("MOVE: east | SAY: hello"))

	seq, started := q.Begin([]Message{{Role: "user", Content: "hi"}})
	require.True(t, started)
	require.True(t, q.Busy())

	res := awaitResult(t, q, time.Second)
	assert.Equal(t, seq, res.Seq)
	assert.NoError(t, res.Err)
	assert.Equal(t, "MOVE: east | SAY: hello", res.Text)
	assert.Empty(t, res.Attempts)
	assert.False(t, q.Busy())
	assert.Equal(t, BreakerClosed, q.BreakerState())
}

func TestQuerierSingleInFlight(t *testing.T) {
	release := make(chan struct{})
	q := newTestQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		completionHandler("MOVE: none")(w, r)
	})

	_, started := q.Begin(nil)
	require.True(t, started)

	// A second request while one is outstanding is suppressed.
	_, started = q.Begin(nil)
	assert.False(t, started)

	close(release)
	awaitResult(t, q, time.Second)
}

func TestQuerierTimeoutAttempts(t *testing.T) {
	q := newTestQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})

	_, started := q.Begin(nil)
	require.True(t, started)

	res := awaitResult(t, q, 2*time.Second)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrQueryTimeout)
	require.Len(t, res.Attempts, 3, "initial attempt plus two retries")
	for _, err := range res.Attempts {
		assert.ErrorIs(t, err, ErrQueryTimeout)
	}

	// Three consecutive timeouts reach the breaker threshold.
	assert.Equal(t, BreakerOpen, q.BreakerState())
}

func TestQuerierCircuitOpenSkipsCall(t *testing.T) {
	var calls atomic.Int32
	q := newTestQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(500 * time.Millisecond)
	})

	_, started := q.Begin(nil)
	require.True(t, started)
	res := awaitResult(t, q, 2*time.Second)
	require.Error(t, res.Err)
	require.Equal(t, BreakerOpen, q.BreakerState())
	before := calls.Load()

	// With the circuit open, the next cycle gets an immediate fallback
	// and no network call is made.
	_, started = q.Begin(nil)
	require.True(t, started)
	res = awaitResult(t, q, time.Second)
	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, ErrQueryUnavailable)
	assert.Equal(t, before, calls.Load())
}

func TestQuerierExpireDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	q := newTestQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		completionHandler("stale answer")(w, r)
	})

	_, started := q.Begin(nil)
	require.True(t, started)

	q.Expire()
	assert.False(t, q.Busy())

	// Let the worker finish and deliver; the stale result must never
	// surface through Poll.
	close(release)
	time.Sleep(100 * time.Millisecond)
	_, ok := q.Poll()
	assert.False(t, ok)
}

func TestClientErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model")
	_, err := c.Complete(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrQueryUnavailable))

	// Connection refused also reads as unavailable.
	dead := NewClient("http://127.0.0.1:1", "test-model")
	_, err = dead.Complete(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrQueryUnavailable))
}
