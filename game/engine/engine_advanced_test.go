package engine

import (
	"math/rand/v2"
	"testing"
)

// randomGrid builds a size x size grid of empty and small power-of-two cells
func randomGrid(r *rand.Rand, size int) [][]int {
	grid := newGrid(size)
	for i := range grid {
		for j := range grid[i] {
			if exp := r.IntN(9); exp > 0 {
				grid[i][j] = 1 << exp
			}
		}
	}
	return grid
}

func gridSum(grid [][]int) int {
	sum := 0
	for _, row := range grid {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

func TestMove_InvariantsOnRandomGrids(t *testing.T) {
	r := newTestRand(42)

	for iter := 0; iter < 500; iter++ {
		size := 2 + r.IntN(4)
		grid := randomGrid(r, size)

		for _, dir := range Directions {
			board := mustRestore(t, grid, 100, uint64(iter))
			before := board.Tiles()

			outcome, err := board.Move(dir)
			if err != nil {
				t.Fatalf("Move(%s) failed: %v", dir, err)
			}

			if board.Score() < 100 {
				t.Fatalf("Score decreased from 100 to %d", board.Score())
			}
			if board.Score() != 100+outcome.ScoreGained {
				t.Fatalf("Score %d does not match gain %d", board.Score(), outcome.ScoreGained)
			}
			if err := ValidateGrid(size, board.Tiles()); err != nil {
				t.Fatalf("Move(%s) on %v produced invalid grid: %v", dir, before, err)
			}

			// merges preserve the sum, so only the spawn can add to it
			spawned := 0
			if outcome.Spawned != nil {
				spawned = outcome.Spawned.Value
			}
			if gridSum(board.Tiles()) != gridSum(before)+spawned {
				t.Fatalf("Move(%s) on %v changed tile sum unexpectedly: %v", dir, before, board.Tiles())
			}

			if outcome.Changed != (outcome.Spawned != nil) {
				t.Fatalf("Spawn must happen exactly when the grid changed: %+v", outcome)
			}
			if !outcome.Changed && !gridsEqual(before, board.Tiles()) {
				t.Fatalf("Unchanged move altered grid %v -> %v", before, board.Tiles())
			}
		}
	}
}

func TestMove_WastedMoveIsIdempotent(t *testing.T) {
	r := newTestRand(7)

	for iter := 0; iter < 300; iter++ {
		board := mustRestore(t, randomGrid(r, 4), 0, uint64(iter))

		for _, dir := range Directions {
			outcome, err := board.Move(dir)
			if err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			if outcome.Changed {
				continue
			}

			grid, score := board.Tiles(), board.Score()
			again, err := board.Move(dir)
			if err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			if again.Changed || !gridsEqual(grid, board.Tiles()) || board.Score() != score {
				t.Fatalf("Repeated wasted %s move was not idempotent", dir)
			}
		}
	}
}

func TestCanMove_MatchesMoveOutcome(t *testing.T) {
	r := newTestRand(99)

	for iter := 0; iter < 500; iter++ {
		grid := randomGrid(r, 3)
		if gridSum(grid) == 0 {
			continue
		}
		board := mustRestore(t, grid, 0, 1)
		canMove := board.CanMove()

		anyChange := false
		for _, dir := range Directions {
			probe := mustRestore(t, grid, 0, 1)
			outcome, err := probe.Move(dir)
			if err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			if outcome.Changed {
				anyChange = true
			}
		}

		if canMove != anyChange {
			t.Fatalf("CanMove() = %v but some move changes grid = %v for %v", canMove, anyChange, grid)
		}
	}
}

func TestMove_PlayUntilStuck(t *testing.T) {
	board, err := NewBoard(4, WithRand(newTestRand(2024)))
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	lastScore := 0
	for turn := 0; turn < 10000 && board.CanMove(); turn++ {
		dir := Directions[turn%len(Directions)]
		if _, err := board.Move(dir); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if board.Score() < lastScore {
			t.Fatalf("Score decreased from %d to %d", lastScore, board.Score())
		}
		lastScore = board.Score()
	}

	if board.CanMove() {
		t.Skip("Board still playable after 10000 turns")
	}
	if len(board.EmptyCells()) != 0 {
		t.Error("A stuck board must be full")
	}
}
