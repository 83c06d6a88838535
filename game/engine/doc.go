// Package engine provides the core board logic for the 2048 sliding-tile game.
//
// The engine package implements the game mechanics including:
//   - Directional compaction and merging of tiles, line by line
//   - Random tile spawning after every effective move
//   - Score accumulation and the "reached 2048" flag
//   - Detection of whether any further move is possible
//   - Grid-size variant configuration and validation
//
// Core Types:
//
// The Engine interface defines the contract for board operations, implemented
// by Board. State is a read-only JSON view of a board, while GameConfig
// describes a grid-size variant loaded from JSON files.
//
// Usage:
//
//	board, err := engine.NewBoard(4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := board.Move(engine.Left)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !outcome.Changed {
//		// wasted move: nothing spawned, score unchanged
//	}
//
// Game Rules:
//
// Every move slides all tiles toward one edge. Two equal tiles that meet merge
// into their sum, which is added to the score; a tile merges at most once per
// move. When the grid changed, one new tile (2 or 4) appears in a random empty
// cell. The board is stuck when it is full and no two neighbours are equal.
//
// A Board is not safe for concurrent use; callers serialize access.
package engine
