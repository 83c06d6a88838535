package session

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Status is the position of a session in its continuation state machine
type Status string

const (
	StatusPlaying          Status = "playing"
	StatusAwaitingDecision Status = "awaiting_decision"
	StatusOver             Status = "over"
)

// MoveRecord is one entry of a session's move history
type MoveRecord struct {
	Turn        int              `json:"turn"`
	Direction   engine.Direction `json:"direction"`
	Changed     bool             `json:"changed"`
	ScoreGained int              `json:"score_gained"`
	Merges      int              `json:"merges"`
	ScoreAfter  int              `json:"score_after"`
	Spawned     *engine.Tile     `json:"spawned,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Session wraps one board together with its score mirror and status.
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	ID             string
	CreatedAt      time.Time
	LastAccessedAt time.Time

	board         *engine.Board
	score         int
	status        Status
	history       []MoveRecord
	scoreRecorded bool
}

// New creates a session around a fresh two-tile board of the given size
func New(id string, size int, opts ...engine.Option) (*Session, error) {
	board, err := engine.NewBoard(size, opts...)
	if err != nil {
		return nil, err
	}
	return newSession(id, board), nil
}

// FromSnapshot rebuilds a session from a stored snapshot.
// An inconsistent snapshot is reported as ErrLoad.
func FromSnapshot(id string, snap Snapshot, opts ...engine.Option) (*Session, error) {
	board, err := engine.RestoreBoard(snap.Size, snap.Grid, snap.Score, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return newSession(id, board), nil
}

func newSession(id string, board *engine.Board) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		CreatedAt:      now,
		LastAccessedAt: now,
		board:          board,
		score:          board.Score(),
		status:         StatusPlaying,
	}
}

// ApplyMove moves the board and mirrors its score.
// Reaching the target tile moves the session into StatusAwaitingDecision.
func (s *Session) ApplyMove(dir engine.Direction) (engine.MoveOutcome, error) {
	outcome, err := s.board.Move(dir)
	if err != nil {
		return outcome, err
	}

	s.score = s.board.Score()
	s.history = append(s.history, MoveRecord{
		Turn:        len(s.history) + 1,
		Direction:   dir,
		Changed:     outcome.Changed,
		ScoreGained: outcome.ScoreGained,
		Merges:      outcome.Merges,
		ScoreAfter:  s.score,
		Spawned:     outcome.Spawned,
		Timestamp:   time.Now(),
	})

	if s.board.TargetReached() && s.status == StatusPlaying {
		s.status = StatusAwaitingDecision
	}
	return outcome, nil
}

// HasReachedTarget reports the board's pending target flag
func (s *Session) HasReachedTarget() bool {
	return s.board.TargetReached()
}

// IsOver consumes the target flag and decides whether the game ends.
// With userWantsToContinue the game ends only when no move is left;
// without it the game ends unconditionally. Over is terminal until Reset.
func (s *Session) IsOver(userWantsToContinue bool) bool {
	s.board.ClearTargetReached()

	if !userWantsToContinue {
		s.status = StatusOver
		return true
	}

	if s.status == StatusOver {
		return true
	}
	if !s.board.CanMove() {
		s.status = StatusOver
		return true
	}
	s.status = StatusPlaying
	return false
}

// Reset restarts the board at the same size under the same session ID
func (s *Session) Reset() {
	s.board.Reset()
	s.score = 0
	s.status = StatusPlaying
	s.history = nil
	s.scoreRecorded = false
}

// Size returns the board dimension
func (s *Session) Size() int {
	return s.board.Size()
}

// Score returns the score mirror
func (s *Session) Score() int {
	return s.score
}

// TileAt returns the value of one cell
func (s *Session) TileAt(row, col int) (int, error) {
	return s.board.TileAt(row, col)
}

// Board exposes the underlying engine for read access
func (s *Session) Board() engine.Engine {
	return s.board
}

// State returns the board state
func (s *Session) State() *engine.State {
	return s.board.State()
}

// Status returns the continuation state
func (s *Session) Status() Status {
	return s.status
}

// Snapshot captures size, grid and score
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Size:  s.board.Size(),
		Grid:  s.board.Tiles(),
		Score: s.score,
	}
}

// History returns a copy of the recorded moves, oldest first
func (s *Session) History() []MoveRecord {
	out := make([]MoveRecord, len(s.history))
	copy(out, s.history)
	return out
}

// ScoreRecorded reports whether the final score went to the ledger
func (s *Session) ScoreRecorded() bool {
	return s.scoreRecorded
}

// MarkScoreRecorded flags the final score as written to the ledger
func (s *Session) MarkScoreRecorded() {
	s.scoreRecorded = true
}
