package watcher

import "time"

// Op is the kind of file system change observed.
type Op int

const (
	// OpWritten covers creation and modification.
	OpWritten Op = iota
	// OpRemoved covers deletion and rename-away.
	OpRemoved
)

// String returns the string representation of the op.
func (o Op) String() string {
	switch o {
	case OpWritten:
		return "written"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one settled burst of file system activity. Paths holds each
// touched path once with the last op seen for it.
type Change struct {
	At    time.Time
	Paths map[string]Op
}
