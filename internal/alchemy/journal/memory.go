package journal

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// Memory stores journal entries in memory.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewMemory creates a new in-memory journal.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Entry)}
}

// Append stores an entry.
func (m *Memory) Append(ctx context.Context, entry Entry) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if m == nil {
		return errors.New("journal store is required")
	}
	runID := strings.TrimSpace(entry.RunID)
	if runID == "" {
		return ErrRunIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entries[runID] {
		if existing.Seq == entry.Seq {
			return ErrAlreadyExists
		}
	}
	entry = entry.Clone()
	entry.RunID = runID
	m.entries[runID] = append(m.entries[runID], entry)
	return nil
}

// List returns the entries of a run ordered by sequence.
func (m *Memory) List(ctx context.Context, runID string) ([]Entry, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if m == nil {
		return nil, errors.New("journal store is required")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, ErrRunIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.entries[runID]
	entries := make([]Entry, 0, len(stored))
	for _, entry := range stored {
		entries = append(entries, entry.Clone())
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

var _ Store = (*Memory)(nil)
