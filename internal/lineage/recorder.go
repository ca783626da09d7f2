package lineage

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder policy constants.
const (
	// QueueSize bounds the number of records waiting for the writer.
	QueueSize = 256
	// MaxWriteAttempts bounds retries for a single record.
	MaxWriteAttempts = 3
	// WriteBackoff is the delay before the first write retry; doubles per retry.
	WriteBackoff = 100 * time.Millisecond
)

// Sink is the write surface the recorder persists through. *Store
// implements it.
type Sink interface {
	InsertAction(Action) error
	InsertEvent(Event) error
	InsertTraitChange(TraitChange) error
}

// record is anything the writer goroutine knows how to persist.
type record interface {
	insert(Sink) error
	kind() string
}

func (a Action) insert(s Sink) error { return s.InsertAction(a) }
func (a Action) kind() string        { return "lineage/" + a.ActionType }

func (e Event) insert(s Sink) error { return s.InsertEvent(e) }
func (e Event) kind() string        { return "event/" + e.EventType }

func (t TraitChange) insert(s Sink) error { return s.InsertTraitChange(t) }
func (t TraitChange) kind() string        { return "trait/" + t.TraitID }

// Recorder accepts records from the frame loop and persists them through a
// single background writer, so the tick that produced an event never waits
// on storage. Enqueueing never blocks: when the queue is full the record is
// dropped and counted.
type Recorder struct {
	store Sink

	mu      sync.Mutex
	closed  bool
	queue   chan record
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// NewRecorder starts the writer goroutine over the given sink.
func NewRecorder(store Sink) *Recorder {
	r := &Recorder{
		store: store,
		queue: make(chan record, QueueSize),
		done:  make(chan struct{}),
	}
	go r.writeLoop()
	return r
}

// RecordAction enqueues a lineage table row.
func (r *Recorder) RecordAction(a Action) { r.enqueue(a) }

// RecordEvent enqueues an events table row.
func (r *Recorder) RecordEvent(e Event) { r.enqueue(e) }

// RecordTraitChange enqueues a traits_evolution table row.
func (r *Recorder) RecordTraitChange(t TraitChange) { r.enqueue(t) }

// Dropped returns how many records were lost to a full queue or exhausted
// write retries.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close stops accepting records, waits for the queue to drain, and returns.
// The store itself is closed by the caller. Records arriving after Close
// are dropped and counted, never sent on the closed channel.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})
	<-r.done
}

func (r *Recorder) enqueue(rec record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.dropped.Add(1)
		slog.Warn("lineage recorder closed, dropping record", "kind", rec.kind())
		return
	}
	select {
	case r.queue <- rec:
	default:
		r.dropped.Add(1)
		slog.Warn("lineage queue full, dropping record", "kind", rec.kind())
	}
}

func (r *Recorder) writeLoop() {
	defer close(r.done)

	for rec := range r.queue {
		var err error
		for attempt := 0; attempt < MaxWriteAttempts; attempt++ {
			if attempt > 0 {
				time.Sleep(WriteBackoff << (attempt - 1))
			}
			if err = rec.insert(r.store); err == nil {
				break
			}
		}
		if err != nil {
			r.dropped.Add(1)
			slog.Warn("lineage write failed, dropping record",
				"kind", rec.kind(), "error", err)
		}
	}
}
