package journal

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_AppendAndList(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for _, entry := range []Entry{
		{RunID: "run-1", Seq: 2, Kind: KindExpired, Handle: 1},
		{RunID: "run-1", Seq: 1, Kind: KindApplied, Handle: 1, Effects: []Effect{{Name: "heal", Calls: 2}}},
		{RunID: "run-2", Seq: 1, Kind: KindApplied, Handle: 7},
	} {
		if err := store.Append(ctx, entry); err != nil {
			t.Fatalf("append entry: %v", err)
		}
	}

	entries, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Kind != KindApplied || entries[1].Kind != KindExpired {
		t.Fatalf("kinds = %s, %s, want applied, expired", entries[0].Kind, entries[1].Kind)
	}
}

func TestMemory_ListReturnsClones(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	effects := []Effect{{Name: "heal", Calls: 1}}
	if err := store.Append(ctx, Entry{RunID: "run-1", Seq: 1, Effects: effects}); err != nil {
		t.Fatalf("append entry: %v", err)
	}
	effects[0].Calls = 9

	first, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	first[0].Effects[0].Calls = 5

	second, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if got := second[0].Effects[0].Calls; got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestMemory_RejectsDuplicateSequence(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	if err := store.Append(ctx, Entry{RunID: "run-1", Seq: 1}); err != nil {
		t.Fatalf("append entry: %v", err)
	}
	if err := store.Append(ctx, Entry{RunID: "run-1", Seq: 1}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("error = %v, want %v", err, ErrAlreadyExists)
	}
}

func TestMemory_RequiresRunID(t *testing.T) {
	store := NewMemory()
	if err := store.Append(context.Background(), Entry{RunID: "  "}); !errors.Is(err, ErrRunIDRequired) {
		t.Fatalf("append error = %v, want %v", err, ErrRunIDRequired)
	}
	if _, err := store.List(context.Background(), ""); !errors.Is(err, ErrRunIDRequired) {
		t.Fatalf("list error = %v, want %v", err, ErrRunIDRequired)
	}
}

func TestMemory_HonorsCanceledContext(t *testing.T) {
	store := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Append(ctx, Entry{RunID: "run-1", Seq: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want %v", err, context.Canceled)
	}
}
