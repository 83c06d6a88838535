package engine

import (
	"fmt"
	"math/rand/v2"
)

// addRandomTile places a 2 or a 4 in a uniformly chosen empty cell.
// The last empty cell on the grid always receives a 2. A full grid is left untouched.
func (b *Board) addRandomTile() *Tile {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return nil
	}

	value := 2
	if len(empty) > 1 && b.intN(2) == 1 {
		value = 4
	}

	pos := empty[b.intN(len(empty))]
	b.grid[pos.Row][pos.Col] = value

	return &Tile{Position: pos, Value: value}
}

// intN draws from the injected source, or the global one
func (b *Board) intN(n int) int {
	if b.rng != nil {
		return b.rng.IntN(n)
	}
	return rand.IntN(n)
}

// countEmptyTiles counts the number of empty cells on the board
func (b *Board) countEmptyTiles() int {
	count := 0
	for _, row := range b.grid {
		for _, v := range row {
			if v == 0 {
				count++
			}
		}
	}
	return count
}

// IsPowerOfTwo reports whether v is a positive power of two
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// ValidateGrid checks that grid is size x size and holds only empty or power-of-two cells
func ValidateGrid(size int, grid [][]int) error {
	if len(grid) != size {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidGrid, size, len(grid))
	}
	for r, row := range grid {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidGrid, r, len(row), size)
		}
		for c, v := range row {
			if v != 0 && !IsPowerOfTwo(v) {
				return fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidGrid, r, c, v)
			}
		}
	}
	return nil
}

func newGrid(size int) [][]int {
	grid := make([][]int, size)
	for i := range grid {
		grid[i] = make([]int, size)
	}
	return grid
}

func copyGrid(grid [][]int) [][]int {
	out := make([][]int, len(grid))
	for i, row := range grid {
		out[i] = append([]int(nil), row...)
	}
	return out
}
