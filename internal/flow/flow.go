// Package flow holds the page-level state machines of the notes client: the auth
// flow (login and signup), the notes flow, home routing and the list reducer.
// Flows never talk to the network directly; they drive an api.Client through the
// AuthAPI and NotesAPI interfaces and report every outcome as view state.
package flow

import (
	"errors"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
)

var (
	// ErrSubmitInProgress is returned when a submit arrives while another is in flight.
	ErrSubmitInProgress = errors.New("flow: submit already in progress")
	// ErrNotLoaded is returned by notes actions issued before the list has loaded.
	ErrNotLoaded = errors.New("flow: notes not loaded")
	// ErrNoteNotFound is returned when an action names a note absent from the list.
	ErrNoteNotFound = errors.New("flow: note not found")
	// ErrNotEditing is returned by edit actions when no editor is open.
	ErrNotEditing = errors.New("flow: no note is being edited")
	// ErrNoteBusy is returned when a mutating call for the note is already in flight.
	ErrNoteBusy = errors.New("flow: note has a call in flight")
)

// User-facing messages.
const (
	MessageCredentialsRequired = "Email and password are required"
	MessageNoteFieldsRequired  = "Title and content are required"
	MessageSignupComplete      = "Account created! Please log in."
	MessageSessionSaveFailed   = "Could not save session"
	MessageEmptyNotes          = "No notes yet. Create your first note above!"
	MessageLoadFailed          = "Failed to load notes"
	MessageCreateFailed        = "Failed to create note"
	MessageUpdateFailed        = "Failed to update note"
	MessageDeleteFailed        = "Failed to delete note"
	MessageDeleteConfirm       = "Are you sure you want to delete this note?"
)

// errorMessage renders err for the view: the server message for API errors,
// fallback for transport and unknown failures.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func notify[V any](observers []func(V), view V) {
	for _, observer := range observers {
		observer(view)
	}
}
