package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const createScoresTable = `CREATE TABLE IF NOT EXISTS scores (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	score       INTEGER NOT NULL,
	recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteLedger stores scores in a SQLite table
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at dsn and
// ensures the scores table exists
func OpenSQLite(dsn string) (*SQLiteLedger, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceIO, err)
	}

	if _, err := db.Exec(createScoresTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create scores table: %v", ErrPersistenceIO, err)
	}

	log.Debug().Str("dsn", dsn).Msg("sqlite ledger ready")
	return &SQLiteLedger{db: db}, nil
}

func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Append inserts score as a new row
func (l *SQLiteLedger) Append(ctx context.Context, score int) error {
	if _, err := l.db.ExecContext(ctx, `INSERT INTO scores (score) VALUES (?)`, score); err != nil {
		return fmt.Errorf("%w: insert score: %v", ErrPersistenceIO, err)
	}
	return nil
}

// Scores returns every score in insertion order
func (l *SQLiteLedger) Scores(ctx context.Context) ([]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT score FROM scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query scores: %v", ErrPersistenceIO, err)
	}
	defer rows.Close()

	scores := []int{}
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%w: scan score: %v", ErrPersistenceIO, err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate scores: %v", ErrPersistenceIO, err)
	}
	return scores, nil
}

// Close releases the database handle
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
