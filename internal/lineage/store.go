// Package lineage persists the provenance of every companion decision, mood
// transition, and trait evolution to a SQLite archive. Writes happen off the
// frame loop and are best-effort: a lost record never stalls gameplay.
package lineage

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteTimeFormat is how CURRENT_TIMESTAMP renders in the archive.
const SQLiteTimeFormat = "2006-01-02 15:04:05"

// Details holds structured key/value context, encoded as JSON text in the
// details column.
type Details map[string]any

func (d Details) encode() string {
	if len(d) == 0 {
		return "{}"
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Action is an append-only row in the lineage table: who did what.
type Action struct {
	ContributorID string
	ActionType    string
	Details       Details
}

// Event is an append-only row in the events table: something happened.
type Event struct {
	EventType       string
	RelatedEntityID string
	Details         Details
}

// TraitChange is an append-only row in the traits_evolution table.
type TraitChange struct {
	TraitID       string
	ContributorID string
	OldLevel      int
	NewLevel      int
	Details       Details
}

// Store wraps a SQLite connection for the lineage archive.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the archive at the given path. ":memory:" is
// supported for tests.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty
		// in-memory database.
		conn.SetMaxOpenConns(1)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lineage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contributor_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		details TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		related_entity_id TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS traits_evolution (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trait_id TEXT NOT NULL,
		contributor_id TEXT NOT NULL DEFAULT '',
		old_level INTEGER NOT NULL DEFAULT 0,
		new_level INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		details TEXT NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_lineage_contributor ON lineage(contributor_id);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
	CREATE INDEX IF NOT EXISTS idx_traits_trait ON traits_evolution(trait_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// InsertAction appends one row to the lineage table.
func (s *Store) InsertAction(a Action) error {
	_, err := s.conn.Exec(
		"INSERT INTO lineage (contributor_id, action_type, details) VALUES (?, ?, ?)",
		a.ContributorID, a.ActionType, a.Details.encode(),
	)
	if err != nil {
		return fmt.Errorf("insert lineage: %w", err)
	}
	return nil
}

// InsertEvent appends one row to the events table.
func (s *Store) InsertEvent(e Event) error {
	_, err := s.conn.Exec(
		"INSERT INTO events (event_type, related_entity_id, details) VALUES (?, ?, ?)",
		e.EventType, e.RelatedEntityID, e.Details.encode(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// InsertTraitChange appends one row to the traits_evolution table.
func (s *Store) InsertTraitChange(t TraitChange) error {
	_, err := s.conn.Exec(
		"INSERT INTO traits_evolution (trait_id, contributor_id, old_level, new_level, details) VALUES (?, ?, ?, ?, ?)",
		t.TraitID, t.ContributorID, t.OldLevel, t.NewLevel, t.Details.encode(),
	)
	if err != nil {
		return fmt.Errorf("insert trait change: %w", err)
	}
	return nil
}

// ActionRow is a fetched lineage table row.
type ActionRow struct {
	ID            int64  `db:"id"`
	ContributorID string `db:"contributor_id"`
	ActionType    string `db:"action_type"`
	Timestamp     string `db:"timestamp"`
	Details       string `db:"details"`
}

// EventRow is a fetched events table row.
type EventRow struct {
	ID              int64  `db:"id"`
	EventType       string `db:"event_type"`
	Timestamp       string `db:"timestamp"`
	RelatedEntityID string `db:"related_entity_id"`
	Details         string `db:"details"`
}

// TraitRow is a fetched traits_evolution table row.
type TraitRow struct {
	ID            int64  `db:"id"`
	TraitID       string `db:"trait_id"`
	ContributorID string `db:"contributor_id"`
	OldLevel      int    `db:"old_level"`
	NewLevel      int    `db:"new_level"`
	Timestamp     string `db:"timestamp"`
	Details       string `db:"details"`
}

// RecentActions fetches the newest lineage rows, newest first.
func (s *Store) RecentActions(limit int) ([]ActionRow, error) {
	var rows []ActionRow
	err := s.conn.Select(&rows, "SELECT * FROM lineage ORDER BY id DESC LIMIT ?", limit)
	return rows, err
}

// RecentEvents fetches the newest event rows, newest first.
func (s *Store) RecentEvents(limit int) ([]EventRow, error) {
	var rows []EventRow
	err := s.conn.Select(&rows, "SELECT * FROM events ORDER BY id DESC LIMIT ?", limit)
	return rows, err
}

// TraitHistory fetches trait evolution rows, newest first. An empty traitID
// fetches all traits.
func (s *Store) TraitHistory(traitID string, limit int) ([]TraitRow, error) {
	var rows []TraitRow
	var err error
	if traitID == "" {
		err = s.conn.Select(&rows, "SELECT * FROM traits_evolution ORDER BY id DESC LIMIT ?", limit)
	} else {
		err = s.conn.Select(&rows, "SELECT * FROM traits_evolution WHERE trait_id = ? ORDER BY id DESC LIMIT ?", traitID, limit)
	}
	return rows, err
}

// CountActions returns the total number of lineage rows, for tests and the
// inspection CLI summary.
func (s *Store) CountActions() (int, error) {
	var n int
	err := s.conn.Get(&n, "SELECT COUNT(*) FROM lineage")
	return n, err
}
