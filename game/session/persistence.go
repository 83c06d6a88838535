package session

// SnapshotStore persists named snapshots and the index of known names
type SnapshotStore interface {
	// Save writes snap under name and records name in the index if absent
	Save(name string, snap Snapshot) error

	// Load reads the snapshot stored under name
	Load(name string) (Snapshot, error)

	// ListNames returns the index in insertion order
	ListNames() ([]string, error)

	// Exists reports whether a snapshot is stored under name
	Exists(name string) bool
}
