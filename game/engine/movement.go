package engine

import "fmt"

// Move slides every line toward the edge named by dir, merging equal tiles.
// A tile is spawned only when the grid actually changed.
func (b *Board) Move(dir Direction) (MoveOutcome, error) {
	if !dir.Valid() {
		return MoveOutcome{}, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	outcome := MoveOutcome{Direction: dir}
	line := make([]int, b.size)

	for i := 0; i < b.size; i++ {
		cells := b.lineCells(dir, i)
		for k, p := range cells {
			line[k] = b.grid[p.Row][p.Col]
		}

		result := mergeLine(line)

		for k, p := range cells {
			if b.grid[p.Row][p.Col] != line[k] {
				outcome.Changed = true
				b.grid[p.Row][p.Col] = line[k]
			}
		}
		outcome.ScoreGained += result.gained
		outcome.Merges += result.merges
		if result.reachedTarget {
			outcome.ReachedTarget = true
		}
	}

	b.score += outcome.ScoreGained
	if outcome.ReachedTarget {
		b.targetReached = true
	}

	if outcome.Changed {
		outcome.Spawned = b.addRandomTile()
	}

	return outcome, nil
}

// lineCells returns the cells of line i oriented so index 0 sits on the destination edge
func (b *Board) lineCells(dir Direction, i int) []Position {
	cells := make([]Position, b.size)
	last := b.size - 1
	for k := 0; k < b.size; k++ {
		switch dir {
		case Left:
			cells[k] = Position{Row: i, Col: k}
		case Right:
			cells[k] = Position{Row: i, Col: last - k}
		case Up:
			cells[k] = Position{Row: k, Col: i}
		case Down:
			cells[k] = Position{Row: last - k, Col: i}
		}
	}
	return cells
}

type mergeResult struct {
	gained        int
	merges        int
	reachedTarget bool
}

// mergeLine compacts and merges one oriented line in place.
//
// For each position the nearest value ahead is pulled into an empty slot, then
// the next non-empty value ahead is merged into it when equal. Positions are
// visited once, so a merged value never merges again during the same move.
func mergeLine(line []int) mergeResult {
	var res mergeResult
	n := len(line)

	for i := 0; i < n; i++ {
		if line[i] == 0 {
			for j := i + 1; j < n; j++ {
				if line[j] != 0 {
					line[i] = line[j]
					line[j] = 0
					break
				}
			}
		}
		if line[i] == 0 {
			// nothing left ahead
			break
		}

		for j := i + 1; j < n; j++ {
			if line[j] == 0 {
				continue
			}
			if line[j] == line[i] {
				line[i] *= 2
				line[j] = 0
				res.gained += line[i]
				res.merges++
				if line[i] == TargetValue {
					res.reachedTarget = true
				}
			}
			break
		}
	}

	return res
}
