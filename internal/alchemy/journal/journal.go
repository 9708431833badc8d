// Package journal records ledger activity for a simulation run.
package journal

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRunIDRequired indicates a missing run id.
	ErrRunIDRequired = errors.New("run id is required")
	// ErrAlreadyExists indicates an entry with the same run id and sequence.
	ErrAlreadyExists = errors.New("journal entry already exists")
)

// Kind identifies the ledger event an entry records.
type Kind string

const (
	KindApplied  Kind = "applied"
	KindExpired  Kind = "expired"
	KindRestored Kind = "restored"
)

// Effect is one effect invoked by an application.
type Effect struct {
	Name  string `json:"name"`
	Calls int    `json:"calls"`
}

// Entry is one recorded ledger event.
type Entry struct {
	RunID      string
	Seq        uint64
	Kind       Kind
	Tick       int
	Handle     uint64
	TargetID   string
	Duration   int
	Effects    []Effect
	Replayed   []uint64
	RecordedAt time.Time
}

// Store appends and lists entries by run.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, runID string) ([]Entry, error)
}

// Clone returns a copy of e that shares no slices with it.
func (e Entry) Clone() Entry {
	cloned := e
	if e.Effects != nil {
		cloned.Effects = append([]Effect(nil), e.Effects...)
	}
	if e.Replayed != nil {
		cloned.Replayed = append([]uint64(nil), e.Replayed...)
	}
	return cloned
}
