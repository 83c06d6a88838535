package session

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Snapshot is the persisted form of a session: size, grid and score
type Snapshot struct {
	Size  int     `json:"size"`
	Grid  [][]int `json:"grid"`
	Score int     `json:"score"`
}

// Encode writes the snapshot as text: the size, one line per row of
// space-separated cell values, then the score
func (s Snapshot) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", s.Size)
	for _, row := range s.Grid {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strconv.Itoa(v)
		}
		fmt.Fprintln(bw, strings.Join(cells, " "))
	}
	fmt.Fprintf(bw, "%d\n", s.Score)
	return bw.Flush()
}

// DecodeSnapshot parses the text written by Encode.
// Any structural problem is reported as ErrLoad.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if len(tokens) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty snapshot", ErrLoad)
	}
	size, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: size %q is not an integer", ErrLoad, tokens[0])
	}
	if size < engine.MinGridSize || size > len(tokens) {
		return Snapshot{}, fmt.Errorf("%w: implausible size %d", ErrLoad, size)
	}

	want := size*size + 2
	switch {
	case len(tokens) < want-1:
		return Snapshot{}, fmt.Errorf("%w: expected %d cells, got %d", ErrLoad, size*size, len(tokens)-1)
	case len(tokens) == want-1:
		return Snapshot{}, fmt.Errorf("%w: missing score", ErrLoad)
	case len(tokens) > want:
		return Snapshot{}, fmt.Errorf("%w: %d unexpected trailing tokens", ErrLoad, len(tokens)-want)
	}

	grid := make([][]int, size)
	for i := range grid {
		grid[i] = make([]int, size)
		for j := range grid[i] {
			tok := tokens[1+i*size+j]
			v, err := strconv.Atoi(tok)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: cell (%d,%d) %q is not an integer", ErrLoad, i, j, tok)
			}
			grid[i][j] = v
		}
	}
	if err := engine.ValidateGrid(size, grid); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	score, err := strconv.Atoi(tokens[want-1])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: score %q is not an integer", ErrLoad, tokens[want-1])
	}
	if score < 0 {
		return Snapshot{}, fmt.Errorf("%w: negative score %d", ErrLoad, score)
	}

	return Snapshot{Size: size, Grid: grid, Score: score}, nil
}
