// Command autoplay drives games on a running 2048 server through its REST API.
// Moves come from a seeded random or a fixed cycling policy with no lookahead,
// so it serves as a load generator and a way to fill the score ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/service"
	"github.com/wricardo/mcp-training/game2048/game/session"
	"github.com/wricardo/mcp-training/game2048/logging"
)

// GameSummary describes one played game
type GameSummary struct {
	SessionID string
	Moves     int
	Score     int
	MaxTile   int
	Reached   bool
	HighScore int
	StoppedBy string
}

// Player drives a single session to the end
type Player struct {
	client      *Client
	policy      Policy
	maxMoves    int
	keepPlaying bool
	delay       time.Duration
}

// Play moves until the game is over or maxMoves is reached. An unfinished
// game is finished explicitly so its score is recorded.
func (p *Player) Play(ctx context.Context, state *engine.State, status session.Status) (GameSummary, error) {
	summary := GameSummary{SessionID: p.client.SessionID()}

	for status != session.StatusOver {
		if err := ctx.Err(); err != nil {
			summary.StoppedBy = "cancelled"
			break
		}
		if p.maxMoves > 0 && summary.Moves >= p.maxMoves {
			summary.StoppedBy = "move limit"
			break
		}

		if status == session.StatusAwaitingDecision {
			summary.Reached = true
			decision, err := p.client.Continue(ctx, p.keepPlaying)
			if err != nil {
				return summary, err
			}
			state, status = decision.GameState, decision.Status
			summary.HighScore = decision.HighScore
			continue
		}

		dir := p.policy.Next()
		result, err := p.client.Move(ctx, string(dir))
		if err != nil {
			return summary, err
		}
		summary.Moves++
		state, status = result.GameState, result.Status
		summary.HighScore = result.HighScore

		log.Debug().
			Str("dir", string(dir)).
			Int("score", state.Score).
			Int("max_tile", state.MaxTile).
			Msg("move")

		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}

	if status != session.StatusOver {
		finish, err := p.client.Finish(context.WithoutCancel(ctx))
		if err != nil {
			return summary, err
		}
		state = finish.GameState
		summary.HighScore = finish.HighScore
	}

	summary.Score = state.Score
	summary.MaxTile = state.MaxTile
	if state.MaxTile >= engine.TargetValue {
		summary.Reached = true
	}
	return summary, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	if err := logging.Setup(cmd.String("log-level"), cmd.String("log-format"), os.Stderr); err != nil {
		return err
	}

	policy, err := newPolicy(cmd.String("policy"), cmd.Uint64("seed"))
	if err != nil {
		return err
	}

	client := NewClient(cmd.String("url"))
	player := &Player{
		client:      client,
		policy:      policy,
		maxMoves:    cmd.Int("max-moves"),
		keepPlaying: cmd.Bool("keep-playing"),
		delay:       cmd.Duration("delay"),
	}

	games := cmd.Int("games")
	resume := cmd.String("session")

	var summaries []GameSummary
	for i := 0; i < games && ctx.Err() == nil; i++ {
		var info *service.SessionInfo
		var err error
		if i == 0 && resume != "" {
			info, err = client.Resume(ctx, resume)
		} else {
			info, err = client.CreateSession(ctx, cmd.String("config"))
		}
		if err != nil {
			return err
		}
		log.Info().Str("session", info.ID).Int("size", info.GameState.Size).Msgf("game %d/%d", i+1, games)

		summary, err := player.Play(ctx, info.GameState, info.Status)
		if err != nil {
			return fmt.Errorf("session %s: %w", info.ID, err)
		}
		summaries = append(summaries, summary)

		event := log.Info().
			Str("session", summary.SessionID).
			Int("moves", summary.Moves).
			Int("score", summary.Score).
			Int("max_tile", summary.MaxTile).
			Bool("reached_2048", summary.Reached).
			Int("high_score", summary.HighScore)
		if summary.StoppedBy != "" {
			event = event.Str("stopped_by", summary.StoppedBy)
		}
		event.Msg("game finished")
	}

	printSummary(summaries)
	return nil
}

func printSummary(summaries []GameSummary) {
	if len(summaries) == 0 {
		return
	}
	best, total, wins := 0, 0, 0
	for _, s := range summaries {
		best = max(best, s.Score)
		total += s.Score
		if s.Reached {
			wins++
		}
	}
	fmt.Printf("Games: %d  Best: %d  Mean: %.1f  Reached 2048: %d\n",
		len(summaries), best, float64(total)/float64(len(summaries)), wins)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play 2048 games against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("GAME2048_API_URL")},
			&cli.StringFlag{Name: "config", Usage: "config id for new sessions (classic, large, tiny)"},
			&cli.StringFlag{Name: "session", Usage: "resume this session for the first game"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "number of games to play"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "stop and finish a game after this many moves (0 = no limit)"},
			&cli.StringFlag{Name: "policy", Value: "random", Usage: `"random", a list such as "up,left" or keys such as "wasd"`},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "seed for the random policy"},
			&cli.BoolFlag{Name: "keep-playing", Value: true, Usage: "keep playing after reaching 2048"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level"},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "log format (console or json)"},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("autoplay failed")
		os.Exit(1)
	}
}
