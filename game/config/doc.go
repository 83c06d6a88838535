// Package config provides management of 2048 grid-size variants.
//
// The config package handles:
//   - Loading variants from JSON files in the configs directory
//   - Validation through engine.ValidateGameConfig
//   - Default variant resolution
//   - Variant discovery and listing
//
// Configuration Format:
//
// Each variant is a small JSON document:
//
//	{
//	  "name": "classic",
//	  "description": "Classic 4x4 board",
//	  "grid_size": 4
//	}
//
// The file name without ".json" is the config ID used to create sessions.
// classic.json is the default when present; otherwise the first valid file
// wins, and an empty directory falls back to the built-in 4x4 variant.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	large, err := manager.LoadConfig("large")
//
// Loaded variants are cached. RefreshCache drops the cache; the server calls
// it whenever the directory changes on disk.
package config
