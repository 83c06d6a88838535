package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/ledger"
	"github.com/wricardo/mcp-training/game2048/game/service"
	"github.com/wricardo/mcp-training/game2048/game/session"
)

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": {Name: "classic", Description: "Classic 4x4 board", GridSize: 4},
			"small":   {Name: "small", Description: "2x2 board", GridSize: 2},
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	if config, ok := m.configs[name]; ok {
		return config, nil
	}
	return nil, errors.New("configuration not found")
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{
		{Filename: "classic.json", ConfigID: "classic", Name: "classic", Description: "Classic 4x4 board", GridSize: 4},
		{Filename: "small.json", ConfigID: "small", Name: "small", Description: "2x2 board", GridSize: 2},
	}, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

type fixture struct {
	svc    service.GameService
	store  *session.FileSnapshotStore
	scores *ledger.FileLedger
	n      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	store, err := session.NewFileSnapshotStore(dir)
	if err != nil {
		t.Fatalf("Failed to create snapshot store: %v", err)
	}
	scores, err := ledger.NewFileLedger(filepath.Join(dir, "Score.txt"))
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}

	var seed uint64
	manager := session.NewManager(store, scores, session.WithRandFactory(func() *rand.Rand {
		seed++
		return rand.New(rand.NewPCG(seed, 99))
	}))

	return &fixture{
		svc:    service.NewGameService(manager, NewMockConfigManager()),
		store:  store,
		scores: scores,
	}
}

// withGrid loads a session holding exactly grid and score
func (f *fixture) withGrid(t *testing.T, grid [][]int, score int) string {
	t.Helper()
	f.n++
	name := fmt.Sprintf("fixture-%d", f.n)
	if err := f.store.Save(name, session.Snapshot{Size: len(grid), Grid: grid, Score: score}); err != nil {
		t.Fatalf("Failed to store fixture: %v", err)
	}
	info, err := f.svc.LoadGame(context.Background(), name)
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}
	return info.ID
}

func (f *fixture) recorded(t *testing.T) []int {
	t.Helper()
	scores, err := f.scores.Scores(context.Background())
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}
	return scores
}

func hasEvent(events []service.GameEvent, eventType string) bool {
	for _, e := range events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

var targetGrid = [][]int{
	{1024, 1024, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name       string
		configName string
		wantSize   int
		wantErr    bool
	}{
		{"default config", "", 4, false},
		{"named config", "small", 2, false},
		{"unknown config", "galactic", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := f.svc.CreateSession(ctx, tt.configName)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if info.GameState.Size != tt.wantSize {
				t.Errorf("Expected size %d, got %d", tt.wantSize, info.GameState.Size)
			}
			if info.Status != session.StatusPlaying {
				t.Errorf("Expected playing, got %s", info.Status)
			}
			if info.GameState.EmptyCells != tt.wantSize*tt.wantSize-2 {
				t.Errorf("Expected two starting tiles, got %d empty cells", info.GameState.EmptyCells)
			}
		})
	}

	sessions, _ := f.svc.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(sessions))
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)

	result, err := f.svc.Move(ctx, id, "a")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Success {
		t.Error("Expected move to change the board")
	}
	if result.GameState.Score != 4 || result.Outcome.ScoreGained != 4 {
		t.Errorf("Expected score 4, got %d", result.GameState.Score)
	}
	if result.GameState.Grid[0][0] != 4 {
		t.Errorf("Expected merged 4 at (0,0), got %v", result.GameState.Grid)
	}
	for _, ev := range []string{service.EventMove, service.EventMerge, service.EventSpawn} {
		if !hasEvent(result.Events, ev) {
			t.Errorf("Expected %s event, got %+v", ev, result.Events)
		}
	}
	if result.Status != session.StatusPlaying {
		t.Errorf("Expected playing, got %s", result.Status)
	}
}

func TestGameService_MoveErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	info, _ := f.svc.CreateSession(ctx, "")

	if _, err := f.svc.Move(ctx, info.ID, "diagonal"); !errors.Is(err, engine.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if _, err := f.svc.Move(ctx, "zzzz", "up"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_WastedMove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, [][]int{
		{2, 0, 0, 0},
		{4, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 10)

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Success || result.Outcome.Spawned != nil {
		t.Errorf("Expected wasted move without spawn, got %+v", result.Outcome)
	}
	if !hasEvent(result.Events, service.EventWastedMove) {
		t.Errorf("Expected wasted_move event, got %+v", result.Events)
	}
	if result.GameState.Score != 10 {
		t.Errorf("Expected score unchanged at 10, got %d", result.GameState.Score)
	}
}

func TestGameService_ContinueAfterTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, targetGrid, 0)

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Status != session.StatusAwaitingDecision {
		t.Fatalf("Expected awaiting_decision, got %s", result.Status)
	}
	if !hasEvent(result.Events, service.EventTargetReached) {
		t.Error("Expected target_reached event")
	}

	if _, err := f.svc.Move(ctx, id, "up"); !errors.Is(err, service.ErrAwaitingDecision) {
		t.Errorf("Expected ErrAwaitingDecision, got %v", err)
	}

	decision, err := f.svc.Continue(ctx, id, true)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if decision.GameOver || decision.Status != session.StatusPlaying {
		t.Errorf("Expected to keep playing, got %+v", decision)
	}
	if decision.GameState.TargetReached {
		t.Error("Expected target flag to be consumed")
	}
	if len(f.recorded(t)) != 0 {
		t.Error("Continuing must not record a score")
	}

	if _, err := f.svc.Continue(ctx, id, true); !errors.Is(err, service.ErrNotAwaitingDecision) {
		t.Errorf("Expected ErrNotAwaitingDecision, got %v", err)
	}
	if _, err := f.svc.Move(ctx, id, "down"); err != nil {
		t.Errorf("Expected moves to be allowed after continuing, got %v", err)
	}
}

func TestGameService_StopAtTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, targetGrid, 0)

	f.svc.Move(ctx, id, "left")

	decision, err := f.svc.Continue(ctx, id, false)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if !decision.GameOver || decision.FinalScore != 2048 {
		t.Errorf("Expected game over with 2048, got %+v", decision)
	}
	if decision.HighScore != 2048 {
		t.Errorf("Expected high score 2048, got %d", decision.HighScore)
	}
	if !hasEvent(decision.Events, service.EventNewHighScore) {
		t.Error("Expected new_high_score event")
	}

	if _, err := f.svc.Move(ctx, id, "up"); !errors.Is(err, service.ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}

	if scores := f.recorded(t); len(scores) != 1 || scores[0] != 2048 {
		t.Errorf("Expected ledger [2048], got %v", scores)
	}
}

func TestGameService_GameOverWhenStuck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// moving left fills the last cell with a forced 2 and leaves no pairs
	id := f.withGrid(t, [][]int{
		{2, 4},
		{0, 8},
	}, 100)

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Status != session.StatusOver {
		t.Fatalf("Expected over, got %s (grid %v)", result.Status, result.GameState.Grid)
	}
	if result.GameState.Grid[1][1] != 2 {
		t.Errorf("Expected forced 2 in the last empty cell, got %v", result.GameState.Grid)
	}
	if !hasEvent(result.Events, service.EventGameOver) {
		t.Error("Expected game_over event")
	}
	if result.HighScore != 100 {
		t.Errorf("Expected high score 100, got %d", result.HighScore)
	}

	// finishing an already finished game records nothing new
	finish, err := f.svc.Finish(ctx, id)
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if finish.FinalScore != 100 {
		t.Errorf("Expected final score 100, got %d", finish.FinalScore)
	}
	if scores := f.recorded(t); len(scores) != 1 {
		t.Errorf("Expected exactly one ledger entry, got %v", scores)
	}
}

// breakLedger puts a directory where the score file goes until the test restores it
func (f *fixture) breakLedger(t *testing.T) (restore func()) {
	t.Helper()
	if err := os.Mkdir(f.scores.Path(), 0755); err != nil {
		t.Fatalf("Failed to block ledger: %v", err)
	}
	return func() {
		if err := os.Remove(f.scores.Path()); err != nil {
			t.Fatalf("Failed to restore ledger: %v", err)
		}
	}
}

func TestGameService_MoveEndsGameWhenLedgerFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, [][]int{
		{2, 2},
		{8, 16},
	}, 0)
	restore := f.breakLedger(t)

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move must not fail on a ledger error, got %v", err)
	}
	if result.Status != session.StatusOver {
		t.Fatalf("Expected over, got %s (grid %v)", result.Status, result.GameState.Grid)
	}
	if result.GameState.Score != 4 || result.GameState.Grid[0][0] != 4 {
		t.Errorf("Expected the merged board with score 4, got %v score %d", result.GameState.Grid, result.GameState.Score)
	}
	if !hasEvent(result.Events, service.EventGameOver) || !hasEvent(result.Events, service.EventScoreNotStored) {
		t.Errorf("Expected game_over and score_not_recorded events, got %+v", result.Events)
	}

	if _, err := f.svc.Finish(ctx, id); !errors.Is(err, session.ErrPersistenceIO) {
		t.Errorf("Expected ErrPersistenceIO while the ledger is broken, got %v", err)
	}

	restore()
	finish, err := f.svc.Finish(ctx, id)
	if err != nil {
		t.Fatalf("Finish failed after ledger recovered: %v", err)
	}
	if finish.FinalScore != 4 {
		t.Errorf("Expected final score 4, got %d", finish.FinalScore)
	}
	f.svc.Finish(ctx, id)
	if scores := f.recorded(t); len(scores) != 1 || scores[0] != 4 {
		t.Errorf("Expected ledger [4], got %v", scores)
	}
}

func TestGameService_StopAtTargetWhenLedgerFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, targetGrid, 0)

	if _, err := f.svc.Move(ctx, id, "left"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	restore := f.breakLedger(t)

	decision, err := f.svc.Continue(ctx, id, false)
	if err != nil {
		t.Fatalf("Continue must not fail on a ledger error, got %v", err)
	}
	if !decision.GameOver || decision.Status != session.StatusOver || decision.FinalScore != 2048 {
		t.Errorf("Expected game over with 2048, got %+v", decision)
	}
	if decision.GameState == nil {
		t.Fatal("Expected the final board in the result")
	}
	if !hasEvent(decision.Events, service.EventScoreNotStored) {
		t.Errorf("Expected score_not_recorded event, got %+v", decision.Events)
	}

	restore()
	if _, err := f.svc.Finish(ctx, id); err != nil {
		t.Fatalf("Finish failed after ledger recovered: %v", err)
	}
	if scores := f.recorded(t); len(scores) != 1 || scores[0] != 2048 {
		t.Errorf("Expected ledger [2048], got %v", scores)
	}
}

func TestGameService_Finish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 4},
	}, 640)

	finish, err := f.svc.Finish(ctx, id)
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if finish.Status != session.StatusOver || finish.FinalScore != 640 {
		t.Errorf("Unexpected finish result: %+v", finish)
	}
	if !finish.NewHighScore {
		t.Error("Expected first finished game to set a new high score")
	}

	f.svc.Finish(ctx, id)
	if scores := f.recorded(t); len(scores) != 1 || scores[0] != 640 {
		t.Errorf("Expected ledger [640], got %v", scores)
	}

	best, err := f.svc.HighScore(ctx)
	if err != nil || best != 640 {
		t.Errorf("Expected high score 640, got %d, %v", best, err)
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, targetGrid, 500)
	f.svc.Move(ctx, id, "left")

	state, err := f.svc.Reset(ctx, id)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Score != 0 || state.Size != 4 || state.EmptyCells != 14 {
		t.Errorf("Unexpected state after reset: %+v", state)
	}

	info, err := f.svc.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("Reset must keep the session: %v", err)
	}
	if info.Status != session.StatusPlaying || info.Moves != 0 {
		t.Errorf("Expected fresh playing session, got %+v", info)
	}
	if len(f.recorded(t)) != 0 {
		t.Error("Reset must not record a score")
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	info, _ := f.svc.CreateSession(ctx, "classic")

	dirs := []string{"up", "left", "down", "right", "up"}
	for _, d := range dirs {
		if _, err := f.svc.Move(ctx, info.ID, d); err != nil {
			t.Fatalf("Move %s failed: %v", d, err)
		}
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantTurns []int
		hasNext   bool
	}{
		{"desc first page", service.HistoryOptions{Page: 1, Limit: 2}, []int{5, 4}, true},
		{"desc last page", service.HistoryOptions{Page: 3, Limit: 2}, []int{1}, false},
		{"asc first page", service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"}, []int{1, 2}, true},
		{"beyond range", service.HistoryOptions{Page: 9, Limit: 2}, []int{}, false},
		{"defaults", service.HistoryOptions{}, []int{5, 4, 3, 2, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := f.svc.GetMoveHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory failed: %v", err)
			}
			if history.TotalMoves != 5 {
				t.Errorf("Expected 5 total moves, got %d", history.TotalMoves)
			}
			if len(history.Moves) != len(tt.wantTurns) {
				t.Fatalf("Expected %d moves, got %d", len(tt.wantTurns), len(history.Moves))
			}
			for i, turn := range tt.wantTurns {
				if history.Moves[i].Turn != turn {
					t.Errorf("Move %d: expected turn %d, got %d", i, turn, history.Moves[i].Turn)
				}
			}
			if history.HasNext != tt.hasNext {
				t.Errorf("Expected HasNext=%v, got %v", tt.hasNext, history.HasNext)
			}
		})
	}
}

func TestGameService_SaveLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, [][]int{{2, 4}, {0, 8}}, 24)

	saved, err := f.svc.SaveGame(ctx, id, "keep")
	if err != nil {
		t.Fatalf("SaveGame failed: %v", err)
	}
	if saved.Score != 24 || saved.Size != 2 {
		t.Errorf("Unexpected save result: %+v", saved)
	}

	if _, err := f.svc.SaveGame(ctx, id, "bad/name"); !errors.Is(err, session.ErrInvalidSaveName) {
		t.Errorf("Expected ErrInvalidSaveName, got %v", err)
	}

	loaded, err := f.svc.LoadGame(ctx, "keep")
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if loaded.ID == id || loaded.Score != 24 || loaded.GameState.Grid[1][1] != 8 {
		t.Errorf("Unexpected loaded session: %+v", loaded)
	}
	if loaded.ConfigName != "small" {
		t.Errorf("Expected 2x2 variant to map to 'small', got %s", loaded.ConfigName)
	}

	if _, err := f.svc.LoadGame(ctx, "never"); !errors.Is(err, session.ErrLoad) {
		t.Errorf("Expected ErrLoad, got %v", err)
	}

	names, err := f.svc.ListSaves(ctx)
	if err != nil {
		t.Fatalf("ListSaves failed: %v", err)
	}
	if names[len(names)-1] != "keep" {
		t.Errorf("Expected 'keep' last in index, got %v", names)
	}
}

func TestGameService_GetTileAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.withGrid(t, [][]int{{2, 4}, {0, 8}}, 0)

	if v, err := f.svc.GetTile(ctx, id, 1, 1); err != nil || v != 8 {
		t.Errorf("GetTile(1,1) = %d, %v", v, err)
	}
	if _, err := f.svc.GetTile(ctx, id, 2, 0); !errors.Is(err, engine.ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}

	if err := f.svc.DeleteSession(ctx, id); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := f.svc.GetBoard(ctx, id); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestIsConflict(t *testing.T) {
	if !service.IsConflict(service.ErrGameOver) || !service.IsConflict(service.ErrAwaitingDecision) {
		t.Error("Expected state errors to be conflicts")
	}
	if service.IsConflict(session.ErrSessionNotFound) {
		t.Error("Not found is not a conflict")
	}
}
