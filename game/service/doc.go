// Package service provides the business logic layer for the 2048 server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing and the continue-or-stop decision after 2048
//   - Final score recording and high score lookup
//   - Save and load of games by name
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager is implemented by session.Manager.
// ConfigManager is implemented by config.Manager.
//
// Turn Flow:
//
// After each move the service checks the session: if the move produced the
// 2048 tile the session waits for Continue; otherwise the board is asked
// whether any move is left. A game that ends, whether by a stuck board, by
// stopping at 2048 or through Finish, appends its score to the ledger
// exactly once. Moves against a finished game fail with ErrGameOver.
//
// Usage:
//
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := gameService.Move(ctx, info.ID, "left")
//
// Concurrency:
//
// Every operation runs under a single lock, which serializes all calls into
// sessions regardless of how many transports are serving requests.
package service
