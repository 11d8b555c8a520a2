package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/spf13/cobra"
)

var errSessionExpired = errors.New("Session expired. Run 'pocketnotes login'.")

var notesCmd = &cobra.Command{
	Use:     "notes",
	Aliases: []string{"n"},
	Short:   "Manage your notes",
}

// notesSession is one mounted notes view for the lifetime of a command.
type notesSession struct {
	flow   *flow.NotesFlow
	routes *flow.RouteRecorder
}

func mountNotes(ctx context.Context, confirmer flow.Confirmer) (*notesSession, error) {
	routes := &flow.RouteRecorder{}
	notesFlow, err := flow.NewNotesFlow(flow.NotesConfig{
		API:       apiClient,
		Session:   sessionStore,
		Navigator: routes,
		Confirmer: confirmer,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	notesFlow.Mount(ctx)
	s := &notesSession{flow: notesFlow, routes: routes}
	if err := s.err(); err != nil {
		notesFlow.Unmount()
		return nil, err
	}
	return s, nil
}

// err reports a redirect to login as an expired session and otherwise the view's error.
func (s *notesSession) err() error {
	if route, ok := s.routes.Last(); ok && route == flow.RouteLogin {
		return errSessionExpired
	}
	if message := s.flow.View().Error; message != "" {
		return errors.New(message)
	}
	return nil
}

func (s *notesSession) find(id int64) (api.Note, bool) {
	notes := s.flow.View().Notes
	index := slices.IndexFunc(notes, func(note api.Note) bool { return note.ID == id })
	if index < 0 {
		return api.Note{}, false
	}
	return notes[index], true
}

func (s *notesSession) close() {
	s.flow.Unmount()
}

func parseNoteID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", value)
	}
	return id, nil
}

func noteNotFound(id int64) error {
	return fmt.Errorf("note %d not found", id)
}

func init() {
	rootCmd.AddCommand(notesCmd)
}
