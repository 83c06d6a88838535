package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

func mustRestore(t *testing.T, grid [][]int, score int, seed uint64) *Board {
	t.Helper()
	board, err := RestoreBoard(len(grid), grid, score, WithRand(newTestRand(seed)))
	if err != nil {
		t.Fatalf("Failed to restore board: %v", err)
	}
	return board
}

func TestNewBoard(t *testing.T) {
	for _, size := range []int{2, 4, 5, 8} {
		board, err := NewBoard(size, WithRand(newTestRand(1)))
		if err != nil {
			t.Fatalf("Failed to create %dx%d board: %v", size, size, err)
		}

		if board.Size() != size {
			t.Errorf("Expected size %d, got %d", size, board.Size())
		}
		if board.Score() != 0 {
			t.Errorf("Expected initial score 0, got %d", board.Score())
		}
		if board.TargetReached() {
			t.Error("Expected target not to be reached initially")
		}

		tiles := 0
		for _, row := range board.Tiles() {
			for _, v := range row {
				if v == 0 {
					continue
				}
				tiles++
				if v != 2 && v != 4 {
					t.Errorf("Expected starting tile to be 2 or 4, got %d", v)
				}
			}
		}
		if tiles != 2 {
			t.Errorf("Expected 2 starting tiles on %dx%d board, got %d", size, size, tiles)
		}
	}
}

func TestNewBoard_InvalidSize(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		_, err := NewBoard(size)
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewBoard(%d): expected ErrInvalidSize, got %v", size, err)
		}
	}
}

func TestNewBoard_DefaultRandomSource(t *testing.T) {
	board, err := NewBoard(4)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	if got := len(board.EmptyCells()); got != 14 {
		t.Errorf("Expected 14 empty cells, got %d", got)
	}
}

func TestBoard_TileAt(t *testing.T) {
	board := mustRestore(t, [][]int{
		{2, 0, 0, 0},
		{0, 4, 0, 0},
		{0, 0, 8, 0},
		{0, 0, 0, 16},
	}, 0, 1)

	for i, want := range []int{2, 4, 8, 16} {
		got, err := board.TileAt(i, i)
		if err != nil {
			t.Fatalf("TileAt(%d,%d) failed: %v", i, i, err)
		}
		if got != want {
			t.Errorf("TileAt(%d,%d) = %d, want %d", i, i, got, want)
		}
	}

	outOfBounds := []struct{ row, col int }{
		{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {10, 10},
	}
	for _, tc := range outOfBounds {
		if _, err := board.TileAt(tc.row, tc.col); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("TileAt(%d,%d): expected ErrOutOfBounds, got %v", tc.row, tc.col, err)
		}
	}
}

func TestRestoreBoard_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		grid    [][]int
		score   int
		wantErr error
	}{
		{"size too small", 1, [][]int{{2}}, 0, ErrInvalidSize},
		{"missing row", 2, [][]int{{2, 0}}, 0, ErrInvalidGrid},
		{"short row", 2, [][]int{{2, 0}, {0}}, 0, ErrInvalidGrid},
		{"non power of two", 2, [][]int{{2, 3}, {0, 0}}, 0, ErrInvalidGrid},
		{"negative cell", 2, [][]int{{2, -2}, {0, 0}}, 0, ErrInvalidGrid},
		{"negative score", 2, [][]int{{2, 0}, {0, 0}}, -4, ErrInvalidGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RestoreBoard(tt.size, tt.grid, tt.score)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRestoreBoard_CopiesGrid(t *testing.T) {
	grid := [][]int{{2, 0}, {0, 4}}
	board := mustRestore(t, grid, 12, 1)

	grid[0][0] = 1024
	if v, _ := board.TileAt(0, 0); v != 2 {
		t.Errorf("Board shares storage with caller grid: got %d", v)
	}
	if board.Score() != 12 {
		t.Errorf("Expected restored score 12, got %d", board.Score())
	}

	tiles := board.Tiles()
	tiles[1][1] = 0
	if v, _ := board.TileAt(1, 1); v != 4 {
		t.Errorf("Tiles() exposed internal storage: got %d", v)
	}
}

func TestBoard_CanMove(t *testing.T) {
	tests := []struct {
		name string
		grid [][]int
		want bool
	}{
		{
			name: "empty cell",
			grid: [][]int{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 0, 4}, {4, 2, 4, 2}},
			want: true,
		},
		{
			name: "full without pairs",
			grid: [][]int{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 2}},
			want: false,
		},
		{
			name: "horizontal pair",
			grid: [][]int{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 2, 8}},
			want: true,
		},
		{
			name: "vertical pair",
			grid: [][]int{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 4}},
			want: true,
		},
		{
			name: "vertical pair in last column",
			grid: [][]int{{2, 4, 2, 8}, {4, 2, 4, 8}, {2, 4, 2, 4}, {4, 2, 4, 2}},
			want: true,
		},
		{
			name: "equal tiles only diagonally",
			grid: [][]int{{2, 4}, {4, 2}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := mustRestore(t, tt.grid, 0, 1)
			before := board.Tiles()

			if got := board.CanMove(); got != tt.want {
				t.Errorf("CanMove() = %v, want %v", got, tt.want)
			}
			if !gridsEqual(before, board.Tiles()) {
				t.Error("CanMove() mutated the grid")
			}
		})
	}
}

func TestBoard_Reset(t *testing.T) {
	board := mustRestore(t, [][]int{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 500, 3)

	if _, err := board.Move(Left); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !board.TargetReached() {
		t.Fatal("Expected target to be reached before reset")
	}

	board.Reset()

	if board.Score() != 0 {
		t.Errorf("Expected score 0 after reset, got %d", board.Score())
	}
	if board.TargetReached() {
		t.Error("Expected target flag to be cleared after reset")
	}
	if board.Size() != 4 {
		t.Errorf("Expected size to stay 4, got %d", board.Size())
	}
	if got := len(board.EmptyCells()); got != 14 {
		t.Errorf("Expected 14 empty cells after reset, got %d", got)
	}
}

func TestBoard_State(t *testing.T) {
	board := mustRestore(t, [][]int{
		{2, 4},
		{0, 64},
	}, 96, 1)

	state := board.State()
	if state.Size != 2 {
		t.Errorf("Expected size 2, got %d", state.Size)
	}
	if state.Score != 96 {
		t.Errorf("Expected score 96, got %d", state.Score)
	}
	if state.MaxTile != 64 {
		t.Errorf("Expected max tile 64, got %d", state.MaxTile)
	}
	if state.EmptyCells != 1 {
		t.Errorf("Expected 1 empty cell, got %d", state.EmptyCells)
	}
	if !state.CanMove {
		t.Error("Expected CanMove to be true with an empty cell")
	}
	if state.Grid[1][1] != 64 {
		t.Errorf("Expected grid copy in state, got %v", state.Grid)
	}
}

func TestBoard_ImplementsEngine(t *testing.T) {
	var _ Engine = (*Board)(nil)
}

func gridsEqual(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
