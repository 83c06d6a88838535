// Package ledger records the final score of every finished game and answers
// the all-time high score.
//
// Two backends implement the Ledger interface:
//   - FileLedger appends one integer per line to a plain text file (Score.txt)
//   - SQLiteLedger stores one row per score in a SQLite database
//
// The high score is never cached: HighScore re-reads the full history on every
// call, so scores appended by another process are picked up immediately.
//
// Usage:
//
//	l, err := ledger.Open("file", filepath.Join(dataDir, "Score.txt"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer l.Close()
//
//	_ = l.Append(ctx, 2480)
//	best, err := ledger.HighScore(ctx, l)
//
// I/O failures are reported wrapped around ErrPersistenceIO; a ledger file
// containing a non-integer line is reported as ErrMalformed.
package ledger
