// Package session provides session management for 2048 games.
//
// The session package implements:
//   - Session, a board plus its score mirror, move history and continuation status
//   - Snapshot, the text format used to save and load a game by name
//   - SnapshotStore and its file-system implementation with the save-name index
//   - Manager, the thread-safe registry of live sessions holding the
//     snapshot store and score ledger handles
//
// Continuation:
//
// Reaching the 2048 tile does not end the game. The session moves from
// StatusPlaying to StatusAwaitingDecision and the caller answers through
// IsOver: continuing returns to StatusPlaying unless no move is left,
// stopping ends the game. The board's target flag is consumed on every
// evaluation, so each new 2048 tile asks again.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. The manager
// ensures IDs are unique and generates them from cryptographic randomness,
// switching to 8 characters when the short space is crowded.
// Reset keeps the ID; loading a saved game registers a new session.
//
// Usage:
//
//	snapshots, _ := session.NewFileSnapshotStore(dataDir)
//	scores, _ := ledger.Open("file", filepath.Join(dataDir, "Score.txt"))
//	manager := session.NewManager(snapshots, scores)
//
//	sess, err := manager.Create("", 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.ApplyMove(engine.Left)
//	if err := manager.Save(sess.ID, "monday"); err != nil {
//		log.Fatal(err)
//	}
//
// Concurrency:
//
// The Manager's registry is safe for concurrent use. A single Session is
// not: the host serializes calls into it (the service package holds one
// lock around every operation).
package session
