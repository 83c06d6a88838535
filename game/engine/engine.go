package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine provides the main interface for board operations
type Engine interface {
	// Board state
	Size() int
	Score() int
	TargetReached() bool
	ClearTargetReached()
	TileAt(row, col int) (int, error)
	Tiles() [][]int
	State() *State
	Reset()

	// Movement operations
	Move(dir Direction) (MoveOutcome, error)
	CanMove() bool
}

// Board implements the Engine interface.
// It exclusively owns its grid; the grid size never changes after construction.
type Board struct {
	size          int
	grid          [][]int
	score         int
	targetReached bool
	rng           *rand.Rand
}

// Option configures a Board at construction
type Option func(*Board)

// WithRand makes the board draw spawn positions and values from r
func WithRand(r *rand.Rand) Option {
	return func(b *Board) {
		b.rng = r
	}
}

// NewBoard creates an empty size x size board seeded with two random tiles
func NewBoard(size int, opts ...Option) (*Board, error) {
	if size < MinGridSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	b := &Board{
		size: size,
		grid: newGrid(size),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.addRandomTile()
	b.addRandomTile()
	return b, nil
}

// RestoreBoard rebuilds a board from persisted contents without spawning tiles
func RestoreBoard(size int, grid [][]int, score int, opts ...Option) (*Board, error) {
	if size < MinGridSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if err := ValidateGrid(size, grid); err != nil {
		return nil, err
	}
	if score < 0 {
		return nil, fmt.Errorf("%w: negative score %d", ErrInvalidGrid, score)
	}

	b := &Board{
		size:  size,
		grid:  copyGrid(grid),
		score: score,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Size returns the grid dimension
func (b *Board) Size() int {
	return b.size
}

// Score returns the accumulated merge gains
func (b *Board) Score() int {
	return b.score
}

// TargetReached reports whether a merge has produced TargetValue since the flag was last cleared
func (b *Board) TargetReached() bool {
	return b.targetReached
}

// ClearTargetReached consumes the target-reached flag
func (b *Board) ClearTargetReached() {
	b.targetReached = false
}

// TileAt returns the value at row, col
func (b *Board) TileAt(row, col int) (int, error) {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return 0, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, row, col, b.size, b.size)
	}
	return b.grid[row][col], nil
}

// Tiles returns a copy of the grid in row-major order
func (b *Board) Tiles() [][]int {
	return copyGrid(b.grid)
}

// State returns a read-only view of the board
func (b *Board) State() *State {
	return &State{
		Size:          b.size,
		Grid:          b.Tiles(),
		Score:         b.score,
		TargetReached: b.targetReached,
		CanMove:       b.CanMove(),
		MaxTile:       b.MaxTile(),
		EmptyCells:    b.countEmptyTiles(),
	}
}

// Reset clears the board back to the two-tile starting state at the same size
func (b *Board) Reset() {
	b.grid = newGrid(b.size)
	b.score = 0
	b.targetReached = false

	b.addRandomTile()
	b.addRandomTile()
}

// MaxTile returns the largest value on the board
func (b *Board) MaxTile() int {
	max := 0
	for _, row := range b.grid {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// EmptyCells returns the positions of all empty cells in row-major order
func (b *Board) EmptyCells() []Position {
	var cells []Position
	for r, row := range b.grid {
		for c, v := range row {
			if v == 0 {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// CanMove reports whether at least one move would change the grid
func (b *Board) CanMove() bool {
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			v := b.grid[r][c]
			if v == 0 {
				return true
			}
			if c+1 < b.size && b.grid[r][c+1] == v {
				return true
			}
			if r+1 < b.size && b.grid[r+1][c] == v {
				return true
			}
		}
	}
	return false
}
