// Package websocket pushes live board updates to browser clients.
//
// A single Hub owns every connection. Clients subscribe to one session
// with ?session=<id> and receive a JSON Message after each change:
//
//	{"session_id": "ab12", "event": "move", "board": {...}, "data": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, "move", state, nil)
//
// BroadcastToSession never blocks the caller. Updates are dropped when the
// queue is full, and subscribers that fall behind are disconnected.
package websocket
