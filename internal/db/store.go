package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		createdAt REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS transcripts_createdAt ON transcripts(createdAt);
`

// Store provides access to the transcript history database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	if dataHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dataHome != "" {
		return filepath.Join(dataHome, "delulu", "history.sqlite")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "delulu", "history.sqlite")
}

// Open opens (creating if needed) the database at path with WAL.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertTranscript records text as dictated at the given time.
func (s *Store) InsertTranscript(text string, at time.Time) (Transcript, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Transcript{}, errors.New("empty transcript")
	}

	t := Transcript{ID: uuid.NewString(), Text: text, CreatedAt: at}
	if _, err := s.db.Exec(`
		INSERT INTO transcripts (id, text, createdAt) VALUES (?, ?, ?)
	`, t.ID, t.Text, unixFromTime(at)); err != nil {
		return Transcript{}, fmt.Errorf("insert transcript: %w", err)
	}
	return t, nil
}

// RecentTranscripts returns up to limit transcripts, newest first.
func (s *Store) RecentTranscripts(limit int) ([]Transcript, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT id, text, createdAt
		FROM transcripts
		ORDER BY createdAt DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []Transcript
	for rows.Next() {
		var t Transcript
		var createdAt float64
		if err := rows.Scan(&t.ID, &t.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.CreatedAt = timeFromUnix(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// LatestTranscript returns the most recent transcript, if any.
func (s *Store) LatestTranscript() (*Transcript, error) {
	row := s.db.QueryRow(`
		SELECT id, text, createdAt
		FROM transcripts
		ORDER BY createdAt DESC, rowid DESC
		LIMIT 1
	`)

	var t Transcript
	var createdAt float64
	if err := row.Scan(&t.ID, &t.Text, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	t.CreatedAt = timeFromUnix(createdAt)
	return &t, nil
}

// PruneTranscripts deletes all but the newest keep transcripts and reports
// how many rows were removed.
func (s *Store) PruneTranscripts(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(`
		DELETE FROM transcripts
		WHERE id NOT IN (
			SELECT id FROM transcripts
			ORDER BY createdAt DESC, rowid DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune transcripts: %w", err)
	}
	return res.RowsAffected()
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
