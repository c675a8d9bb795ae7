package models

import (
	"github.com/aleister1102/pagewatch/internal/pathexpr"
)

// ChangeKind classifies a single difference between two snapshots.
type ChangeKind string

const (
	ChangeKindAdded    ChangeKind = "added"
	ChangeKindRemoved  ChangeKind = "removed"
	ChangeKindModified ChangeKind = "modified"
)

// ChangeEntry describes one difference at a specific location in the
// normalized payload.
type ChangeEntry struct {
	Path     pathexpr.Path
	Kind     ChangeKind
	OldValue Value // nil when Kind is ChangeKindAdded
	NewValue Value // nil when Kind is ChangeKindRemoved
}

// ChangeSet is the ordered list of differences between two snapshots.
// Entries appear in depth-first traversal order following the canonical
// key sort, so comparing the same pair of snapshots always yields the
// same sequence.
type ChangeSet []ChangeEntry

// IsEmpty reports whether the change set contains no entries.
func (cs ChangeSet) IsEmpty() bool {
	return len(cs) == 0
}

// CountByKind returns how many entries carry the given kind.
func (cs ChangeSet) CountByKind(kind ChangeKind) int {
	count := 0
	for _, entry := range cs {
		if entry.Kind == kind {
			count++
		}
	}
	return count
}
