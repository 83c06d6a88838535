// Command analyze prints statistics about a 2048 data directory: the final
// scores recorded in the ledger and every saved game listed in the index.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/ledger"
	"github.com/wricardo/mcp-training/game2048/game/session"
)

// ScoreStats summarizes the final scores of finished games
type ScoreStats struct {
	Games  int
	High   int
	Low    int
	Mean   float64
	Median float64
}

// SaveReport describes one saved game
type SaveReport struct {
	Name       string
	Size       int
	Score      int
	MaxTile    int
	EmptyCells int
	CanMove    bool
	Err        error
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "report scores and saved games from a 2048 data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Value: "data", Usage: "data directory", Sources: cli.EnvVars("DATA_DIR")},
			&cli.StringFlag{Name: "ledger", Value: ledger.BackendFile, Usage: "score ledger backend (file or sqlite)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyze(ctx, os.Stdout, cmd.String("data-dir"), cmd.String("ledger"))
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func analyze(ctx context.Context, w io.Writer, dataDir, backend string) error {
	if _, err := os.Stat(dataDir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	path := filepath.Join(dataDir, "Score.txt")
	if backend == ledger.BackendSQLite {
		path = filepath.Join(dataDir, "scores.db")
	}
	l, err := ledger.Open(backend, path)
	if err != nil {
		return err
	}
	defer l.Close()

	scores, err := l.Scores(ctx)
	if err != nil {
		return err
	}

	store, err := session.NewFileSnapshotStore(dataDir)
	if err != nil {
		return err
	}
	reports, err := inspectSaves(store)
	if err != nil {
		return err
	}

	printScores(w, summarizeScores(scores))
	printSaves(w, reports)
	return nil
}

func summarizeScores(scores []int) ScoreStats {
	stats := ScoreStats{Games: len(scores)}
	if len(scores) == 0 {
		return stats
	}

	sorted := slices.Clone(scores)
	slices.Sort(sorted)
	stats.Low = sorted[0]
	stats.High = sorted[len(sorted)-1]

	total := 0
	for _, s := range sorted {
		total += s
	}
	stats.Mean = float64(total) / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = float64(sorted[mid-1]+sorted[mid]) / 2
	} else {
		stats.Median = float64(sorted[mid])
	}
	return stats
}

// inspectSaves loads every indexed save. Unreadable saves are reported, not fatal.
func inspectSaves(store *session.FileSnapshotStore) ([]SaveReport, error) {
	names, err := store.ListNames()
	if err != nil {
		return nil, err
	}

	reports := make([]SaveReport, 0, len(names))
	for _, name := range names {
		report := SaveReport{Name: name}
		snap, err := store.Load(name)
		if err != nil {
			report.Err = err
			reports = append(reports, report)
			continue
		}
		board, err := engine.RestoreBoard(snap.Size, snap.Grid, snap.Score)
		if err != nil {
			report.Err = err
			reports = append(reports, report)
			continue
		}
		state := board.State()
		report.Size = state.Size
		report.Score = state.Score
		report.MaxTile = state.MaxTile
		report.EmptyCells = state.EmptyCells
		report.CanMove = state.CanMove
		reports = append(reports, report)
	}
	return reports, nil
}

func printScores(w io.Writer, stats ScoreStats) {
	fmt.Fprintln(w, "=== Scores ===")
	if stats.Games == 0 {
		fmt.Fprintln(w, "No finished games recorded")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "Games:  %d\n", stats.Games)
	fmt.Fprintf(w, "High:   %d\n", stats.High)
	fmt.Fprintf(w, "Low:    %d\n", stats.Low)
	fmt.Fprintf(w, "Mean:   %.1f\n", stats.Mean)
	fmt.Fprintf(w, "Median: %.1f\n", stats.Median)
	fmt.Fprintln(w)
}

func printSaves(w io.Writer, reports []SaveReport) {
	fmt.Fprintln(w, "=== Saved games ===")
	if len(reports) == 0 {
		fmt.Fprintln(w, "No saved games")
		return
	}

	width := len("name")
	for _, r := range reports {
		width = max(width, len(r.Name))
	}
	fmt.Fprintf(w, "%-*s  %4s  %7s  %6s  %5s  %s\n", width, "name", "size", "score", "max", "empty", "status")
	fmt.Fprintln(w, strings.Repeat("-", width+40))
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(w, "%-*s  unreadable: %v\n", width, r.Name, r.Err)
			continue
		}
		status := "playable"
		if !r.CanMove {
			status = "stuck"
		} else if r.MaxTile >= engine.TargetValue {
			status = "won"
		}
		fmt.Fprintf(w, "%-*s  %4d  %7d  %6d  %5d  %s\n", width, r.Name, r.Size, r.Score, r.MaxTile, r.EmptyCells, status)
	}
}
