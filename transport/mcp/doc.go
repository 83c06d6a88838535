// Package mcp exposes 2048 to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API (package api), so the MCP process holds no game state of its own and
// many agents can share one server.
//
// Tools:
//   - create_session, list_sessions, board
//   - move, continue_game, reset_game, finish_game, move_history
//   - save_game, load_game, list_saves, high_score
//   - list_configs, game_instructions, describe_tile
//
// Failures such as an unknown session or a move on a finished game are
// returned as tool error results, not as protocol errors.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
