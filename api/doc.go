// Package api provides the HTTP REST API for 2048 sessions.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic"}, optional)
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session details
//   - DELETE /api/sessions/{id} - Drop a session
//
// Play:
//   - GET /api/sessions/{id}/board - Current board
//   - GET /api/sessions/{id}/tiles/{row}/{col} - One cell
//   - POST /api/sessions/{id}/move - {"direction": "up"} (w/a/s/d accepted)
//   - POST /api/sessions/{id}/continue - {"continue": true|false} after reaching 2048
//   - POST /api/sessions/{id}/reset - Fresh board, same session
//   - POST /api/sessions/{id}/finish - End the game and record its score
//   - GET /api/sessions/{id}/history - Paginated moves (?page=1&limit=20&order=desc)
//
// Persistence:
//   - POST /api/sessions/{id}/save - {"name": "checkpoint"}
//   - GET /api/saves - Saved game names in save order
//   - POST /api/saves/{name}/load - Restore a save as a new session
//   - GET /api/scores/high - Best recorded final score
//
// Configuration:
//   - GET /api/configs - Available grid sizes
//   - GET /api/configs/{name} - One config
//
// Live updates are served on /ws?session={id}; see package websocket.
//
// Errors are returned as {"error": "..."} with 400 for bad input, 404 for
// unknown sessions, saves or configs, 409 when the game state forbids the
// request, 422 for unreadable saves and 503 when the score ledger or save
// directory cannot be used.
package api
