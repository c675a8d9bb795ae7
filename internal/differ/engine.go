// Package differ computes the differences between two normalized payloads.
// The structural Engine walks mappings and sequences and emits path-scoped
// change entries; the TextDiffer compares rendered page text line by line.
package differ

import (
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/pathexpr"

	"github.com/rs/zerolog"
)

// Engine compares two normalized payload values structurally.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a new structural diff engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "DiffEngine").Logger(),
	}
}

// Compare returns the differences between the previous and current
// normalized values. A nil previous value means no baseline exists yet; by
// definition nothing has changed, so the result is empty. Entries come out
// in depth-first order following the canonical key sort, so the same pair
// of inputs always yields the same sequence.
func (e *Engine) Compare(previous, current models.Value) models.ChangeSet {
	if previous == nil {
		return nil
	}

	var changes models.ChangeSet
	e.compareValues(pathexpr.Path{}, previous, current, &changes)
	return changes
}

func (e *Engine) compareValues(at pathexpr.Path, previous, current models.Value, out *models.ChangeSet) {
	if current == nil {
		// Defensive: a vanished root is a removal of everything at this path.
		*out = append(*out, models.ChangeEntry{Path: at, Kind: models.ChangeKindRemoved, OldValue: previous})
		return
	}

	if previous.Kind() != current.Kind() {
		*out = append(*out, models.ChangeEntry{
			Path:     at,
			Kind:     models.ChangeKindModified,
			OldValue: previous,
			NewValue: current,
		})
		return
	}

	switch prev := previous.(type) {
	case models.Mapping:
		e.compareMappings(at, prev, current.(models.Mapping), out)
	case models.Sequence:
		e.compareSequences(at, prev, current.(models.Sequence), out)
	default:
		if !models.ValuesEqual(previous, current) {
			*out = append(*out, models.ChangeEntry{
				Path:     at,
				Kind:     models.ChangeKindModified,
				OldValue: previous,
				NewValue: current,
			})
		}
	}
}

// compareMappings merge-walks two key-sorted field lists in a single pass.
func (e *Engine) compareMappings(at pathexpr.Path, previous, current models.Mapping, out *models.ChangeSet) {
	i, j := 0, 0
	for i < len(previous) && j < len(current) {
		prevField, currField := previous[i], current[j]
		switch {
		case prevField.Key == currField.Key:
			e.compareValues(at.Child(pathexpr.Key(prevField.Key)), prevField.Value, currField.Value, out)
			i++
			j++
		case prevField.Key < currField.Key:
			*out = append(*out, models.ChangeEntry{
				Path:     at.Child(pathexpr.Key(prevField.Key)),
				Kind:     models.ChangeKindRemoved,
				OldValue: prevField.Value,
			})
			i++
		default:
			*out = append(*out, models.ChangeEntry{
				Path:     at.Child(pathexpr.Key(currField.Key)),
				Kind:     models.ChangeKindAdded,
				NewValue: currField.Value,
			})
			j++
		}
	}
	for ; i < len(previous); i++ {
		*out = append(*out, models.ChangeEntry{
			Path:     at.Child(pathexpr.Key(previous[i].Key)),
			Kind:     models.ChangeKindRemoved,
			OldValue: previous[i].Value,
		})
	}
	for ; j < len(current); j++ {
		*out = append(*out, models.ChangeEntry{
			Path:     at.Child(pathexpr.Key(current[j].Key)),
			Kind:     models.ChangeKindAdded,
			NewValue: current[j].Value,
		})
	}
}

// compareSequences compares elements position by position. Elements present
// on one side only become additions or removals at their index.
func (e *Engine) compareSequences(at pathexpr.Path, previous, current models.Sequence, out *models.ChangeSet) {
	shared := len(previous)
	if len(current) < shared {
		shared = len(current)
	}

	for i := 0; i < shared; i++ {
		e.compareValues(at.Child(pathexpr.Index(i)), previous[i], current[i], out)
	}
	for i := shared; i < len(previous); i++ {
		*out = append(*out, models.ChangeEntry{
			Path:     at.Child(pathexpr.Index(i)),
			Kind:     models.ChangeKindRemoved,
			OldValue: previous[i],
		})
	}
	for i := shared; i < len(current); i++ {
		*out = append(*out, models.ChangeEntry{
			Path:     at.Child(pathexpr.Index(i)),
			Kind:     models.ChangeKindAdded,
			NewValue: current[i],
		})
	}
}
