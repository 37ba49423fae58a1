// Package sqlite implements the statistics sink on top of SQLite, grounded
// on the teacher's single-connection, WAL-mode store of the same name.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_stats (
	pseudonym                      TEXT PRIMARY KEY,
	nb_connections                 INTEGER NOT NULL DEFAULT 0,
	tx_messages                    INTEGER NOT NULL DEFAULT 0,
	cumulative_connection_seconds  INTEGER NOT NULL DEFAULT 0
);
`

// Store is a SQLite-backed stats.Sink.
type Store struct {
	db *sql.DB
}

// New opens (creating if absent) the SQLite database at dbPath and applies
// the statistics schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite serializes writers regardless; one connection avoids
	// SQLITE_BUSY churn under the default driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithSetup opens a database and runs setup against it before applying
// the statistics schema. Tests use this to point at ":memory:".
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordConnect upserts the pseudonym's row and increments its connection
// count, creating the row with count 1 the first time the pseudonym is
// seen.
func (s *Store) RecordConnect(pseudonym string) error {
	_, err := s.db.Exec(`
		INSERT INTO client_stats (pseudonym, nb_connections)
		VALUES (?, 1)
		ON CONFLICT(pseudonym) DO UPDATE SET nb_connections = nb_connections + 1
	`, pseudonym)
	if err != nil {
		return fmt.Errorf("record connect: %w", err)
	}
	return nil
}

// RecordDisconnect adds duration to the pseudonym's cumulative connection
// time, creating the row if it somehow does not exist yet.
func (s *Store) RecordDisconnect(pseudonym string, duration time.Duration) error {
	seconds := int64(duration.Seconds())
	if seconds < 0 {
		seconds = 0
	}

	_, err := s.db.Exec(`
		INSERT INTO client_stats (pseudonym, cumulative_connection_seconds)
		VALUES (?, ?)
		ON CONFLICT(pseudonym) DO UPDATE SET
			cumulative_connection_seconds = cumulative_connection_seconds + excluded.cumulative_connection_seconds
	`, pseudonym, seconds)
	if err != nil {
		return fmt.Errorf("record disconnect: %w", err)
	}
	return nil
}

// RecordMessage increments the pseudonym's transmitted-message count,
// creating the row if it somehow does not exist yet.
func (s *Store) RecordMessage(pseudonym string) error {
	_, err := s.db.Exec(`
		INSERT INTO client_stats (pseudonym, tx_messages)
		VALUES (?, 1)
		ON CONFLICT(pseudonym) DO UPDATE SET tx_messages = tx_messages + 1
	`, pseudonym)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

// Counters is a snapshot of one pseudonym's lifetime statistics, used by
// tests to assert on the sink's state.
type Counters struct {
	NbConnections               int64
	TxMessages                  int64
	CumulativeConnectionSeconds int64
}

// Get returns the counters for pseudonym, or false if no row exists.
func (s *Store) Get(pseudonym string) (Counters, bool, error) {
	var c Counters
	row := s.db.QueryRow(`
		SELECT nb_connections, tx_messages, cumulative_connection_seconds
		FROM client_stats WHERE pseudonym = ?
	`, pseudonym)
	if err := row.Scan(&c.NbConnections, &c.TxMessages, &c.CumulativeConnectionSeconds); err != nil {
		if err == sql.ErrNoRows {
			return Counters{}, false, nil
		}
		return Counters{}, false, fmt.Errorf("get counters: %w", err)
	}
	return c, true, nil
}
