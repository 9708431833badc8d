// Package sqlite provides a SQLite-backed journal store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/potionlab/internal/alchemy/journal"
	"github.com/louisbranch/potionlab/internal/alchemy/journal/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/potionlab/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists journal entries in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite journal store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append inserts one entry.
func (s *Store) Append(ctx context.Context, entry journal.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	runID := strings.TrimSpace(entry.RunID)
	if runID == "" {
		return journal.ErrRunIDRequired
	}
	effects := entry.Effects
	if effects == nil {
		effects = []journal.Effect{}
	}
	effectsJSON, err := json.Marshal(effects)
	if err != nil {
		return fmt.Errorf("encode effects: %w", err)
	}
	replayed := entry.Replayed
	if replayed == nil {
		replayed = []uint64{}
	}
	replayedJSON, err := json.Marshal(replayed)
	if err != nil {
		return fmt.Errorf("encode replayed handles: %w", err)
	}
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO journal_entries (
		   run_id,
		   seq,
		   kind,
		   tick,
		   handle,
		   target_id,
		   duration,
		   effects_json,
		   replayed_json,
		   recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		int64(entry.Seq),
		string(entry.Kind),
		entry.Tick,
		int64(entry.Handle),
		entry.TargetID,
		entry.Duration,
		string(effectsJSON),
		string(replayedJSON),
		toMillis(recordedAt),
	)
	if err != nil {
		if isJournalUniqueViolation(err) {
			return journal.ErrAlreadyExists
		}
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// List returns the entries of a run ordered by sequence.
func (s *Store) List(ctx context.Context, runID string) ([]journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, journal.ErrRunIDRequired
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT run_id, seq, kind, tick, handle, target_id, duration,
		        effects_json, replayed_json, recorded_at
		   FROM journal_entries
		  WHERE run_id = ?
		  ORDER BY seq ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var entry journal.Entry
		var seq int64
		var kind string
		var handle int64
		var effectsJSON string
		var replayedJSON string
		var recordedAt int64
		if err := rows.Scan(
			&entry.RunID,
			&seq,
			&kind,
			&entry.Tick,
			&handle,
			&entry.TargetID,
			&entry.Duration,
			&effectsJSON,
			&replayedJSON,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("list journal entries: %w", err)
		}
		if err := json.Unmarshal([]byte(effectsJSON), &entry.Effects); err != nil {
			return nil, fmt.Errorf("decode effects: %w", err)
		}
		if err := json.Unmarshal([]byte(replayedJSON), &entry.Replayed); err != nil {
			return nil, fmt.Errorf("decode replayed handles: %w", err)
		}
		entry.Seq = uint64(seq)
		entry.Kind = journal.Kind(kind)
		entry.Handle = uint64(handle)
		entry.RecordedAt = fromMillis(recordedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}

func isJournalUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "journal_entries.")
}

var _ journal.Store = (*Store)(nil)
