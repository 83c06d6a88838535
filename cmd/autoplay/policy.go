package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Policy names the direction for the next request
type Policy interface {
	Next() engine.Direction
}

// RandomPolicy picks uniformly among the four directions
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy seeds a random policy; equal seeds replay the same requests
func NewRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (p *RandomPolicy) Next() engine.Direction {
	return engine.Directions[p.rng.IntN(len(engine.Directions))]
}

// CyclePolicy walks a fixed direction sequence
type CyclePolicy struct {
	dirs []engine.Direction
	i    int
}

// NewCyclePolicy parses a sequence such as "wasd" or "up,left"
func NewCyclePolicy(seq []string) (*CyclePolicy, error) {
	if len(seq) == 0 {
		return nil, errors.New("empty direction sequence")
	}
	dirs := make([]engine.Direction, 0, len(seq))
	for _, s := range seq {
		d, err := engine.ParseDirection(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, s)
		}
		dirs = append(dirs, d)
	}
	return &CyclePolicy{dirs: dirs}, nil
}

func (p *CyclePolicy) Next() engine.Direction {
	d := p.dirs[p.i%len(p.dirs)]
	p.i++
	return d
}

// newPolicy builds the policy selected on the command line: "random", a
// comma separated list such as "up,left" or a run of keys such as "wasd".
func newPolicy(name string, seed uint64) (Policy, error) {
	if name == "" || name == "random" {
		return NewRandomPolicy(seed), nil
	}
	return NewCyclePolicy(splitSequence(name))
}

func splitSequence(s string) []string {
	if strings.Contains(s, ",") {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if _, err := engine.ParseDirection(s); err == nil {
		return []string{s}
	}
	return strings.Split(s, "")
}
