package service

import (
	"time"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/session"
)

// Event types carried by GameEvent
const (
	EventMove           = "move"
	EventWastedMove     = "wasted_move"
	EventMerge          = "merge"
	EventSpawn          = "spawn"
	EventTargetReached  = "target_reached"
	EventContinue       = "continue"
	EventGameOver       = "game_over"
	EventNewHighScore   = "new_high_score"
	EventReset          = "reset"
	EventScoreNotStored = "score_not_recorded"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string         `json:"id"`
	ConfigName     string         `json:"config_name"`
	Status         session.Status `json:"status"`
	Score          int            `json:"score"`
	Moves          int            `json:"moves"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	GameState      *engine.State  `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	Outcome   engine.MoveOutcome `json:"outcome"`
	GameState *engine.State      `json:"game_state"`
	Status    session.Status     `json:"status"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
	HighScore int                `json:"high_score"`
}

// DecisionResult is the answer to a continue-or-stop decision after reaching 2048
type DecisionResult struct {
	Continued  bool           `json:"continued"`
	GameOver   bool           `json:"game_over"`
	GameState  *engine.State  `json:"game_state"`
	Status     session.Status `json:"status"`
	FinalScore int            `json:"final_score,omitempty"`
	HighScore  int            `json:"high_score"`
	Message    string         `json:"message"`
	Events     []GameEvent    `json:"events,omitempty"`
}

// FinishResult reports a session that has been ended
type FinishResult struct {
	SessionID    string         `json:"session_id"`
	FinalScore   int            `json:"final_score"`
	HighScore    int            `json:"high_score"`
	NewHighScore bool           `json:"new_high_score"`
	GameState    *engine.State  `json:"game_state"`
	Status       session.Status `json:"status"`
	Events       []GameEvent    `json:"events,omitempty"`
}

// SaveResult reports a stored snapshot
type SaveResult struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
	Score     int    `json:"score"`
	Size      int    `json:"size"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     int              `json:"value,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []session.MoveRecord `json:"moves"`
	TotalMoves  int                  `json:"total_moves"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalPages  int                  `json:"total_pages"`
	HasNext     bool                 `json:"has_next"`
	HasPrevious bool                 `json:"has_previous"`
}

// ConfigInfo provides information about a grid-size variant
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
}
