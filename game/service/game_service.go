package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/session"
)

var (
	ErrGameOver            = errors.New("game is over")
	ErrAwaitingDecision    = errors.New("target reached: decide whether to continue before moving")
	ErrNotAwaitingDecision = errors.New("no continue decision is pending")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	Continue(ctx context.Context, sessionID string, keepPlaying bool) (*DecisionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.State, error)
	Finish(ctx context.Context, sessionID string) (*FinishResult, error)

	// Game State
	GetBoard(ctx context.Context, sessionID string) (*engine.State, error)
	GetTile(ctx context.Context, sessionID string, row, col int) (int, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Persistence
	SaveGame(ctx context.Context, sessionID, name string) (*SaveResult, error)
	LoadGame(ctx context.Context, name string) (*SessionInfo, error)
	ListSaves(ctx context.Context) ([]string, error)
	HighScore(ctx context.Context) (int, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, size int) (*session.Session, error)
	Get(id string) (*session.Session, error)
	List() []*session.Session
	Delete(id string) error
	UpdateLastAccessed(id string) error

	Save(id, name string) error
	Load(name string) (*session.Session, error)
	ListSavedNames() ([]string, error)
	RecordFinalScore(ctx context.Context, score int) error
	CurrentHighScore(ctx context.Context) (int, error)
}

// ConfigManager handles grid-size variant loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
}
