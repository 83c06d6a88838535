package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/session"
)

// gameServiceImpl implements the GameService interface.
// One mutex serializes every operation, so no two calls touch a session at once.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session from a grid-size variant
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if available := s.configIDs(); len(available) > 0 {
				return nil, fmt.Errorf("config '%s' not available (%w). Available configs: %v", configName, err, available)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config.GridSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", sess.ID).Int("size", sess.Size()).Str("config", config.Name).Msg("session created")
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return nil
}

// Move executes a single move for a session.
// Reaching 2048 suspends the session until Continue; a board with no moves
// left ends the game and records the final score.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (use up, down, left, right or w/a/s/d)", err, direction)
	}

	switch sess.Status() {
	case session.StatusOver:
		return nil, ErrGameOver
	case session.StatusAwaitingDecision:
		return nil, ErrAwaitingDecision
	}

	outcome, err := sess.ApplyMove(dir)
	if err != nil {
		return nil, err
	}

	result := &MoveResult{
		Success: outcome.Changed,
		Outcome: outcome,
		Events:  moveEvents(outcome, sess.Score()),
	}

	switch {
	case sess.Status() == session.StatusAwaitingDecision:
		result.Message = "You reached 2048! Continue playing or stop?"
		result.Events = append(result.Events, newEvent(EventTargetReached, result.Message))
	case sess.IsOver(true):
		// a ledger failure leaves the score unrecorded for a later Finish
		events, _ := s.finalize(ctx, sess)
		result.Events = append(result.Events, events...)
		result.Message = fmt.Sprintf("Game over! Final score: %d", sess.Score())
	case !outcome.Changed:
		result.Message = fmt.Sprintf("Nothing moved %s", dir)
	default:
		result.Message = fmt.Sprintf("Moved %s, score %d", dir, sess.Score())
	}

	result.GameState = sess.State()
	result.Status = sess.Status()
	result.HighScore = s.highScore(ctx)

	log.Debug().
		Str("session", sess.ID).
		Str("dir", string(dir)).
		Bool("changed", outcome.Changed).
		Int("gained", outcome.ScoreGained).
		Int("score", sess.Score()).
		Str("status", string(sess.Status())).
		Msg("move")
	return result, nil
}

// Continue answers the decision pending after reaching 2048
func (s *gameServiceImpl) Continue(ctx context.Context, sessionID string, keepPlaying bool) (*DecisionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status() != session.StatusAwaitingDecision {
		return nil, ErrNotAwaitingDecision
	}

	result := &DecisionResult{Continued: keepPlaying}
	if sess.IsOver(keepPlaying) {
		events, _ := s.finalize(ctx, sess)
		result.Events = events
		result.GameOver = true
		result.FinalScore = sess.Score()
		result.Message = fmt.Sprintf("Game over! Final score: %d", sess.Score())
	} else {
		result.Message = "Keep going!"
		result.Events = []GameEvent{newEvent(EventContinue, result.Message)}
	}

	result.GameState = sess.State()
	result.Status = sess.Status()
	result.HighScore = s.highScore(ctx)
	return result, nil
}

// Reset restarts the board under the same session ID.
// An unfinished game's score is not recorded.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Reset()
	log.Info().Str("session", sess.ID).Msg("session reset")
	return sess.State(), nil
}

// Finish ends the game and records its final score once
func (s *gameServiceImpl) Finish(ctx context.Context, sessionID string) (*FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Status() != session.StatusOver {
		sess.IsOver(false)
	}

	previous := s.highScore(ctx)
	events, err := s.finalize(ctx, sess)
	if err != nil {
		return nil, err
	}

	best := s.highScore(ctx)
	return &FinishResult{
		SessionID:    sess.ID,
		FinalScore:   sess.Score(),
		HighScore:    best,
		NewHighScore: sess.Score() > previous && sess.Score() == best,
		GameState:    sess.State(),
		Status:       sess.Status(),
		Events:       events,
	}, nil
}

// GetBoard returns the current board state
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.State(), nil
}

// GetTile returns the value of one cell
func (s *gameServiceImpl) GetTile(ctx context.Context, sessionID string, row, col int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.TileAt(row, col)
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []session.MoveRecord{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// SaveGame stores the session's snapshot under name
func (s *gameServiceImpl) SaveGame(ctx context.Context, sessionID, name string) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(sess.ID, name); err != nil {
		return nil, err
	}

	return &SaveResult{
		Name:      name,
		SessionID: sess.ID,
		Score:     sess.Score(),
		Size:      sess.Size(),
	}, nil
}

// LoadGame restores a saved game as a new session
func (s *gameServiceImpl) LoadGame(ctx context.Context, name string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Load(name)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSaves returns the known save names in index order
func (s *gameServiceImpl) ListSaves(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.ListSavedNames()
}

// HighScore re-reads the ledger and returns the best final score
func (s *gameServiceImpl) HighScore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.CurrentHighScore(ctx)
}

// ListConfigs returns all available grid-size variants
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific grid-size variant
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// getSession looks up a session and refreshes its access time. Callers hold s.mu.
func (s *gameServiceImpl) getSession(sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// finalize appends the final score of an Over session to the ledger once.
// A failed append leaves the session unrecorded so Finish can retry it.
func (s *gameServiceImpl) finalize(ctx context.Context, sess *session.Session) ([]GameEvent, error) {
	events := []GameEvent{newEvent(EventGameOver, fmt.Sprintf("Game over with score %d", sess.Score()))}
	if sess.ScoreRecorded() {
		return events, nil
	}

	previous, prevErr := s.sessions.CurrentHighScore(ctx)
	if prevErr != nil {
		log.Warn().Err(prevErr).Msg("could not read high score before recording")
	}

	if err := s.sessions.RecordFinalScore(ctx, sess.Score()); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Int("score", sess.Score()).Msg("failed to record final score")
		return append(events, newEvent(EventScoreNotStored, err.Error())), err
	}
	sess.MarkScoreRecorded()
	log.Info().Str("session", sess.ID).Int("score", sess.Score()).Msg("final score recorded")

	if prevErr == nil && sess.Score() > previous {
		events = append(events, GameEvent{
			Type:      EventNewHighScore,
			Message:   fmt.Sprintf("New high score: %d", sess.Score()),
			Timestamp: time.Now(),
			Value:     sess.Score(),
		})
	}
	return events, nil
}

// highScore reads the ledger for display; read failures are logged and shown as 0
func (s *gameServiceImpl) highScore(ctx context.Context) int {
	best, err := s.sessions.CurrentHighScore(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read high score")
		return 0
	}
	return best
}

func (s *gameServiceImpl) sessionInfo(sess *session.Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.configForSize(sess.Size()),
		Status:         sess.Status(),
		Score:          sess.Score(),
		Moves:          len(sess.History()),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.State(),
	}
}

// configForSize returns the ID of the first variant with the given grid size
func (s *gameServiceImpl) configForSize(size int) string {
	if configs, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range configs {
			if cfg.GridSize == size {
				return cfg.ConfigID
			}
		}
	}
	return fmt.Sprintf("%dx%d", size, size)
}

func (s *gameServiceImpl) configIDs() []string {
	configs, err := s.configs.ListConfigs()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(configs))
	for _, cfg := range configs {
		ids = append(ids, cfg.ConfigID)
	}
	return ids
}

// moveEvents generates events from a move outcome
func moveEvents(outcome engine.MoveOutcome, score int) []GameEvent {
	if !outcome.Changed {
		return []GameEvent{newEvent(EventWastedMove, fmt.Sprintf("Nothing moved %s", outcome.Direction))}
	}

	events := []GameEvent{newEvent(EventMove, fmt.Sprintf("Moved %s", outcome.Direction))}
	if outcome.Merges > 0 {
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("%d merge(s) for +%d, score %d", outcome.Merges, outcome.ScoreGained, score),
			Timestamp: time.Now(),
			Value:     outcome.ScoreGained,
		})
	}
	if t := outcome.Spawned; t != nil {
		pos := t.Position
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("New %d tile at (%d,%d)", t.Value, pos.Row, pos.Col),
			Timestamp: time.Now(),
			Position:  &pos,
			Value:     t.Value,
		})
	}
	return events
}

func newEvent(eventType, message string) GameEvent {
	return GameEvent{Type: eventType, Message: message, Timestamp: time.Now()}
}

// IsConflict reports errors caused by the session's state rather than the request
func IsConflict(err error) bool {
	return errors.Is(err, ErrGameOver) || errors.Is(err, ErrAwaitingDecision) || errors.Is(err, ErrNotAwaitingDecision)
}
