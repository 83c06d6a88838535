package engine

import "strings"

// Direction represents one of the four move directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"

	// TargetValue is the tile value that sets the target-reached flag
	TargetValue = 2048

	// Validation constants
	MinGridSize     = 2
	MaxGridSize     = 8
	DefaultGridSize = 4
)

// Directions lists every valid direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction.
// Besides the direction names it accepts the w/a/s/d key bindings.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Position represents row,col coordinates on the grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tile is a cell value at a position
type Tile struct {
	Position
	Value int `json:"value"`
}

// MoveOutcome describes what a single move did to the board
type MoveOutcome struct {
	Direction     Direction `json:"direction"`
	Changed       bool      `json:"changed"`
	ScoreGained   int       `json:"score_gained"`
	Merges        int       `json:"merges"`
	Spawned       *Tile     `json:"spawned,omitempty"`
	ReachedTarget bool      `json:"reached_target"`
}

// State is a read-only snapshot of a board for presentation layers
type State struct {
	Size          int     `json:"size"`
	Grid          [][]int `json:"grid"`
	Score         int     `json:"score"`
	TargetReached bool    `json:"target_reached"`
	CanMove       bool    `json:"can_move"`
	MaxTile       int     `json:"max_tile"`
	EmptyCells    int     `json:"empty_cells"`
}

// GameConfig describes a grid-size variant loaded from JSON
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
}
