package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileLedger stores scores as one decimal integer per line
type FileLedger struct {
	path string
	mu   sync.Mutex
}

// NewFileLedger creates a ledger backed by path, creating its directory
func NewFileLedger(path string) (*FileLedger, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create ledger directory: %v", ErrPersistenceIO, err)
		}
	}
	return &FileLedger{path: path}, nil
}

// Path returns the ledger file location
func (l *FileLedger) Path() string {
	return l.path
}

// Append adds score as a new line at the end of the file
func (l *FileLedger) Append(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open ledger: %v", ErrPersistenceIO, err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", score); err != nil {
		f.Close()
		return fmt.Errorf("%w: append score: %v", ErrPersistenceIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close ledger: %v", ErrPersistenceIO, err)
	}
	return nil
}

// Scores reads every recorded score in file order.
// A missing file is an empty history.
func (l *FileLedger) Scores(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open ledger: %v", ErrPersistenceIO, err)
	}
	defer f.Close()

	scores := []int{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, lineNo, line)
		}
		scores = append(scores, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read ledger: %v", ErrPersistenceIO, err)
	}
	return scores, nil
}

// Close is a no-op; the file is opened per call
func (l *FileLedger) Close() error {
	return nil
}
