package session

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	savedGamesDir   = "savedGames"
	savedGamesIndex = "savedGames.txt"
)

// FileSnapshotStore implements SnapshotStore on the file system.
//
// Layout under the data directory:
//
//	savedGames.txt          one save name per line
//	savedGames/<name>.txt   one snapshot per name
type FileSnapshotStore struct {
	dataDir string
	mu      sync.Mutex
}

// NewFileSnapshotStore creates the store, creating the saves directory if needed
func NewFileSnapshotStore(dataDir string) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, savedGamesDir), 0755); err != nil {
		return nil, fmt.Errorf("%w: create saves directory: %v", ErrPersistenceIO, err)
	}
	return &FileSnapshotStore{dataDir: dataDir}, nil
}

// ValidateSaveName rejects names that cannot be used as a file name or index line
func ValidateSaveName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidSaveName)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidSaveName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidSaveName, name)
	case strings.ContainsAny(name, "/\\\n\r\x00"):
		return fmt.Errorf("%w: %q contains a forbidden character", ErrInvalidSaveName, name)
	}
	return nil
}

// Save writes the snapshot and appends name to the index only when absent.
// Saving under an existing name overwrites its snapshot.
func (fs *FileSnapshotStore) Save(name string, snap Snapshot) error {
	if err := ValidateSaveName(name); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := snap.Encode(&buf); err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrPersistenceIO, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.WriteFile(fs.snapshotPath(name), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: write snapshot: %v", ErrPersistenceIO, err)
	}

	names, err := fs.readIndex()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}

	f, err := os.OpenFile(fs.indexPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open index: %v", ErrPersistenceIO, err)
	}
	if _, err := fmt.Fprintln(f, name); err != nil {
		f.Close()
		return fmt.Errorf("%w: append index: %v", ErrPersistenceIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close index: %v", ErrPersistenceIO, err)
	}
	return nil
}

// Load reads and decodes the snapshot stored under name
func (fs *FileSnapshotStore) Load(name string) (Snapshot, error) {
	if err := ValidateSaveName(name); err != nil {
		return Snapshot{}, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.snapshotPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, fmt.Errorf("%w: %w: %q", ErrLoad, ErrSnapshotNotFound, name)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: open snapshot: %v", ErrPersistenceIO, err)
	}
	defer f.Close()

	snap, err := DecodeSnapshot(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("saved game %q: %w", name, err)
	}
	return snap, nil
}

// ListNames returns the save-name index in file order
func (fs *FileSnapshotStore) ListNames() ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.readIndex()
}

// Exists checks if a snapshot file exists for name
func (fs *FileSnapshotStore) Exists(name string) bool {
	if ValidateSaveName(name) != nil {
		return false
	}
	_, err := os.Stat(fs.snapshotPath(name))
	return err == nil
}

// Dir returns the directory holding snapshot files
func (fs *FileSnapshotStore) Dir() string {
	return filepath.Join(fs.dataDir, savedGamesDir)
}

func (fs *FileSnapshotStore) readIndex() ([]string, error) {
	f, err := os.Open(fs.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open index: %v", ErrPersistenceIO, err)
	}
	defer f.Close()

	names := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read index: %v", ErrPersistenceIO, err)
	}
	return names, nil
}

// snapshotPath returns the full file path for a save name
func (fs *FileSnapshotStore) snapshotPath(name string) string {
	return filepath.Join(fs.dataDir, savedGamesDir, name+".txt")
}

func (fs *FileSnapshotStore) indexPath() string {
	return filepath.Join(fs.dataDir, savedGamesIndex)
}
