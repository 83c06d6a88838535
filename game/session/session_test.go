package session

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func restoredSession(t *testing.T, grid [][]int, score int) *Session {
	t.Helper()
	sess, err := FromSnapshot("test", Snapshot{Size: len(grid), Grid: grid, Score: score}, engine.WithRand(testRand(1)))
	if err != nil {
		t.Fatalf("Failed to restore session: %v", err)
	}
	return sess
}

func TestNew(t *testing.T) {
	sess, err := New("abcd", 4, engine.WithRand(testRand(1)))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if sess.ID != "abcd" {
		t.Errorf("Expected ID abcd, got %s", sess.ID)
	}
	if sess.Size() != 4 {
		t.Errorf("Expected size 4, got %d", sess.Size())
	}
	if sess.Score() != 0 {
		t.Errorf("Expected score 0, got %d", sess.Score())
	}
	if sess.Status() != StatusPlaying {
		t.Errorf("Expected status playing, got %s", sess.Status())
	}
	if len(sess.History()) != 0 {
		t.Error("Expected empty history")
	}

	if _, err := New("x", 1); !errors.Is(err, engine.ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
}

func TestSession_ApplyMoveMirrorsScore(t *testing.T) {
	sess := restoredSession(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)

	outcome, err := sess.ApplyMove(engine.Left)
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if outcome.ScoreGained != 4 {
		t.Errorf("Expected score gain 4, got %d", outcome.ScoreGained)
	}
	if sess.Score() != 4 || sess.Score() != sess.Board().Score() {
		t.Errorf("Score mirror out of sync: session %d, board %d", sess.Score(), sess.Board().Score())
	}

	history := sess.History()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(history))
	}
	if history[0].Turn != 1 || history[0].Direction != engine.Left || history[0].ScoreAfter != 4 {
		t.Errorf("Unexpected history record: %+v", history[0])
	}

	if _, err := sess.ApplyMove("sideways"); !errors.Is(err, engine.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if len(sess.History()) != 1 {
		t.Error("Failed move must not be recorded")
	}
}

func TestSession_TargetContinuation(t *testing.T) {
	newTargetSession := func(t *testing.T) *Session {
		sess := restoredSession(t, [][]int{
			{1024, 1024, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
		}, 0)
		if _, err := sess.ApplyMove(engine.Left); err != nil {
			t.Fatalf("ApplyMove failed: %v", err)
		}
		if !sess.HasReachedTarget() {
			t.Fatal("Expected target to be reached")
		}
		if sess.Status() != StatusAwaitingDecision {
			t.Fatalf("Expected awaiting_decision, got %s", sess.Status())
		}
		return sess
	}

	t.Run("continue", func(t *testing.T) {
		sess := newTargetSession(t)
		if sess.IsOver(true) {
			t.Error("Expected game to continue on a board with moves left")
		}
		if sess.HasReachedTarget() {
			t.Error("Expected target flag to be consumed")
		}
		if sess.Status() != StatusPlaying {
			t.Errorf("Expected playing, got %s", sess.Status())
		}
	})

	t.Run("stop", func(t *testing.T) {
		sess := newTargetSession(t)
		if !sess.IsOver(false) {
			t.Error("Expected stopping to end the game")
		}
		if sess.HasReachedTarget() {
			t.Error("Expected target flag to be consumed")
		}
		if sess.Status() != StatusOver {
			t.Errorf("Expected over, got %s", sess.Status())
		}
	})
}

func TestSession_IsOverWithoutMoves(t *testing.T) {
	sess := restoredSession(t, [][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}, 100)

	if !sess.IsOver(true) {
		t.Error("Expected IsOver(true) on a stuck board")
	}
	if sess.Status() != StatusOver {
		t.Errorf("Expected over, got %s", sess.Status())
	}

	// Over is terminal until Reset
	if !sess.IsOver(true) {
		t.Error("Expected stuck board to stay over")
	}
}

func TestSession_IsOverFalseAlwaysEnds(t *testing.T) {
	sess := restoredSession(t, [][]int{{2, 0}, {0, 0}}, 0)
	if !sess.IsOver(false) {
		t.Error("Expected IsOver(false) to return true")
	}
}

func TestSession_OverIsTerminal(t *testing.T) {
	sess := restoredSession(t, [][]int{{2, 0}, {0, 0}}, 0)
	sess.IsOver(false)

	if !sess.IsOver(true) {
		t.Error("Expected an ended game to stay over while moves remain")
	}
	if sess.Status() != StatusOver {
		t.Errorf("Expected over, got %s", sess.Status())
	}
	if _, err := sess.ApplyMove(engine.Down); err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if !sess.IsOver(true) || sess.Status() != StatusOver {
		t.Errorf("Expected over after a further move, got %s", sess.Status())
	}

	sess.Reset()
	if sess.IsOver(true) {
		t.Error("Expected a reset game to be playable")
	}
}

func TestSession_Reset(t *testing.T) {
	sess := restoredSession(t, [][]int{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 300)
	sess.ApplyMove(engine.Left)
	sess.IsOver(false)
	sess.MarkScoreRecorded()

	sess.Reset()

	if sess.ID != "test" {
		t.Errorf("Reset must keep the session ID, got %s", sess.ID)
	}
	if sess.Score() != 0 {
		t.Errorf("Expected score 0, got %d", sess.Score())
	}
	if sess.Status() != StatusPlaying {
		t.Errorf("Expected playing, got %s", sess.Status())
	}
	if sess.ScoreRecorded() {
		t.Error("Expected score-recorded mark to be cleared")
	}
	if len(sess.History()) != 0 {
		t.Error("Expected history to be cleared")
	}
	if got := len(sess.Board().State().Grid); got != 4 {
		t.Errorf("Expected size 4 after reset, got %d", got)
	}
	if got := sess.State().EmptyCells; got != 14 {
		t.Errorf("Expected two starting tiles, got %d empty cells", got)
	}
}

func TestSession_SnapshotAndTileAt(t *testing.T) {
	sess := restoredSession(t, [][]int{{2, 4}, {8, 0}}, 20)

	snap := sess.Snapshot()
	if snap.Size != 2 || snap.Score != 20 || snap.Grid[1][0] != 8 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}

	if v, err := sess.TileAt(0, 1); err != nil || v != 4 {
		t.Errorf("TileAt(0,1) = %d, %v", v, err)
	}
	if _, err := sess.TileAt(2, 0); !errors.Is(err, engine.ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestFromSnapshot_Invalid(t *testing.T) {
	_, err := FromSnapshot("x", Snapshot{Size: 2, Grid: [][]int{{3, 0}, {0, 0}}, Score: 0})
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad, got %v", err)
	}
}
