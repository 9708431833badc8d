package journal

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/potionlab/internal/alchemy/ledger"
)

// Recorder turns ledger events into journal entries. Observer callbacks
// cannot fail, so the first store error is kept and reported by Err; later
// events are dropped once an error occurred. Appends use the context set by
// Bind, falling back to the one given to NewRecorder.
type Recorder struct {
	base  context.Context
	ctx   context.Context
	store Store
	runID string
	now   func() time.Time

	mu  sync.Mutex
	seq uint64
	err error
}

// NewRecorder returns a recorder appending to store under runID.
func NewRecorder(ctx context.Context, store Store, runID string) *Recorder {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Recorder{
		base:  ctx,
		ctx:   ctx,
		store: store,
		runID: runID,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RunID returns the run the recorder appends to.
func (r *Recorder) RunID() string {
	return r.runID
}

// Bind sets the context for the appends of the next ledger call. A nil ctx
// restores the context given to NewRecorder.
func (r *Recorder) Bind(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx == nil {
		ctx = r.base
	}
	r.ctx = ctx
}

// Err returns the first append failure.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Applied records an application.
func (r *Recorder) Applied(event ledger.ApplyEvent) {
	effects := make([]Effect, 0, len(event.Effects))
	for _, e := range event.Effects {
		effects = append(effects, Effect{Name: e.Name, Calls: e.Calls})
	}
	r.append(Entry{
		Kind:     KindApplied,
		Tick:     event.Tick,
		Handle:   uint64(event.Handle),
		TargetID: event.TargetID,
		Duration: event.Duration,
		Effects:  effects,
	})
}

// Expired records an expiry.
func (r *Recorder) Expired(event ledger.Expiry) {
	r.append(Entry{
		Kind:     KindExpired,
		Tick:     event.Tick,
		Handle:   uint64(event.Handle),
		TargetID: event.TargetID,
	})
}

// Restored records a restoration and the handles replayed after it.
func (r *Recorder) Restored(event ledger.RestoreEvent) {
	replayed := make([]uint64, 0, len(event.Replayed))
	for _, h := range event.Replayed {
		replayed = append(replayed, uint64(h))
	}
	r.append(Entry{
		Kind:     KindRestored,
		Tick:     event.Tick,
		TargetID: event.TargetID,
		Replayed: replayed,
	})
}

func (r *Recorder) append(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.store == nil {
		return
	}
	r.seq++
	entry.RunID = r.runID
	entry.Seq = r.seq
	entry.RecordedAt = r.now()
	if err := r.store.Append(r.ctx, entry); err != nil {
		r.err = err
	}
}

var _ ledger.Observer = (*Recorder)(nil)
