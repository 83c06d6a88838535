// Command validate checks the files a 2048 server reads at startup:
//   - grid-size configs in the config directory (JSON shape, name, description, grid size)
//   - the saved-games index and every snapshot it lists
//   - snapshot files present on disk but missing from the index
//   - the score ledger (one integer per line)
//
// It prints a report and exits non-zero when anything is invalid.
package main

import (
	"context"
	"encoding/json"
	"errors"
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

// ValidationResult captures the outcome of validating a single file.
// Errors holds failures when Valid is false and informational lines otherwise.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single grid-size config file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{File: filepath.Base(filePath), Valid: true, Errors: []string{}}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	if want := strings.TrimSuffix(result.File, ".json"); config.Name != want {
		result.info("Name %q differs from file name %q", config.Name, want)
	}
	result.info("Grid: %dx%d", config.GridSize, config.GridSize)
	return result
}

// validateSaves checks the index against the snapshot directory.
// The first result covers the index itself, one result follows per listed save.
func validateSaves(dataDir string) []ValidationResult {
	index := ValidationResult{File: "savedGames.txt", Valid: true, Errors: []string{}}

	store, err := session.NewFileSnapshotStore(dataDir)
	if err != nil {
		index.fail("%v", err)
		return []ValidationResult{index}
	}
	names, err := store.ListNames()
	if err != nil {
		index.fail("%v", err)
		return []ValidationResult{index}
	}

	results := []ValidationResult{}
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			index.fail("Duplicate entry %q", name)
			continue
		}
		seen[name] = true
		results = append(results, validateSave(store, name))
	}

	files, err := filepath.Glob(filepath.Join(store.Dir(), "*.txt"))
	if err != nil {
		index.fail("Failed to list snapshots: %v", err)
	}
	var orphans []string
	for _, file := range files {
		if name := strings.TrimSuffix(filepath.Base(file), ".txt"); !seen[name] {
			orphans = append(orphans, name)
		}
	}
	slices.Sort(orphans)
	for _, name := range orphans {
		index.fail("Snapshot %q is not listed in the index", name)
	}

	if index.Valid {
		index.info("%d saved games listed", len(names))
	}
	return append([]ValidationResult{index}, results...)
}

func validateSave(store *session.FileSnapshotStore, name string) ValidationResult {
	result := ValidationResult{File: filepath.Join("savedGames", name+".txt"), Valid: true, Errors: []string{}}

	snap, err := store.Load(name)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	board, err := engine.RestoreBoard(snap.Size, snap.Grid, snap.Score)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	result.info("%dx%d board, score %d, max tile %d", snap.Size, snap.Size, board.Score(), board.MaxTile())
	if !board.CanMove() {
		result.info("No moves left")
	}
	return result
}

// validateLedger checks that every non-blank ledger line is an integer
func validateLedger(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true, Errors: []string{}}

	l, err := ledger.NewFileLedger(path)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	scores, err := l.Scores(context.Background())
	if err != nil {
		result.fail("%v", err)
		return result
	}
	for i, s := range scores {
		if s < 0 {
			result.fail("Score #%d is negative: %d", i+1, s)
		}
	}
	if result.Valid {
		result.info("%d recorded scores", len(scores))
	}
	return result
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, info := range result.Errors {
			fmt.Fprintln(w, "  "+info)
		}
		return
	}
	fmt.Fprintln(w, "❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
}

// run validates everything and reports whether all of it is valid
func run(w io.Writer, configDir, dataDir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}

	var results []ValidationResult
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	if dataDir != "" {
		results = append(results, validateSaves(dataDir)...)
		results = append(results, validateLedger(filepath.Join(dataDir, "Score.txt")))
	}

	allValid := true
	for _, result := range results {
		printResult(w, result)
		allValid = allValid && result.Valid
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All files are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some files have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "validate 2048 configs, saved games and the score ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "../configs", Usage: "config directory", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "data-dir", Value: "", Usage: "data directory (skipped when empty)", Sources: cli.EnvVars("DATA_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := run(os.Stdout, cmd.String("config-dir"), cmd.String("data-dir"))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("validation failed")
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		os.Exit(1)
	}
}
