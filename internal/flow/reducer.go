package flow

import "github.com/MarcoPoloResearchLab/pocketnotes/internal/api"

type mutationKind int

const (
	mutationAppend mutationKind = iota + 1
	mutationReplace
	mutationRemove
)

// Mutation describes a server-confirmed change to the note list.
type Mutation struct {
	kind mutationKind
	note api.Note
	id   int64
}

// Appended adds note to the end of the list.
func Appended(note api.Note) Mutation {
	return Mutation{kind: mutationAppend, note: note}
}

// Replaced swaps the entry whose id matches note.ID.
func Replaced(note api.Note) Mutation {
	return Mutation{kind: mutationReplace, note: note, id: note.ID}
}

// Removed drops the entry with the given id.
func Removed(id int64) Mutation {
	return Mutation{kind: mutationRemove, id: id}
}

// Apply returns the list that results from applying m to current. current is never modified.
func Apply(current []api.Note, m Mutation) []api.Note {
	next := make([]api.Note, 0, len(current)+1)
	switch m.kind {
	case mutationAppend:
		next = append(next, current...)
		next = append(next, m.note)
	case mutationReplace:
		for _, note := range current {
			if note.ID == m.id {
				next = append(next, m.note)
				continue
			}
			next = append(next, note)
		}
	case mutationRemove:
		for _, note := range current {
			if note.ID != m.id {
				next = append(next, note)
			}
		}
	default:
		next = append(next, current...)
	}
	return next
}
