package session

import (
	"errors"

	"github.com/wricardo/mcp-training/game2048/game/ledger"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")

	// ErrLoad reports a missing or malformed snapshot
	ErrLoad             = errors.New("load error")
	ErrSnapshotNotFound = errors.New("saved game not found")
	ErrInvalidSaveName  = errors.New("invalid save name")

	// ErrPersistenceIO is shared with the ledger so callers test a single value
	ErrPersistenceIO = ledger.ErrPersistenceIO
)
