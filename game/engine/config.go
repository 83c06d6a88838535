package engine

import "fmt"

// ValidateGameConfig validates a grid-size variant
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	return nil
}

// DefaultConfig returns the classic 4x4 variant
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 4x4 board",
		GridSize:    DefaultGridSize,
	}
}
