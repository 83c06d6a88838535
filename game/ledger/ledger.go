package ledger

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrPersistenceIO  = errors.New("persistence I/O error")
	ErrMalformed      = errors.New("malformed score ledger")
	ErrUnknownBackend = errors.New("unknown ledger backend")
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Ledger is an append-only history of final scores
type Ledger interface {
	Append(ctx context.Context, score int) error
	Scores(ctx context.Context) ([]int, error)
	Close() error
}

// HighScore returns the maximum recorded score, or 0 when nothing was recorded
func HighScore(ctx context.Context, l Ledger) (int, error) {
	scores, err := l.Scores(ctx)
	if err != nil {
		return 0, err
	}

	best := 0
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best, nil
}

// Open creates a ledger for the given backend name
func Open(backend, path string) (Ledger, error) {
	switch backend {
	case "", BackendFile:
		return NewFileLedger(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
