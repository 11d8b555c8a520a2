package mcp

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
)

var errSessionExpired = errors.New("Session expired. Run 'pocketnotes login'.")

// mountNotes mounts a fresh notes flow for one tool call. Deletion approval is
// decided up front by the caller.
func (s *Server) mountNotes(ctx context.Context, approveDelete bool) (*flow.NotesFlow, *flow.RouteRecorder, error) {
	recorder := &flow.RouteRecorder{}
	notesFlow, err := flow.NewNotesFlow(flow.NotesConfig{
		API:       s.api,
		Session:   s.session,
		Navigator: recorder,
		Confirmer: flow.ConfirmerFunc(func(string) bool { return approveDelete }),
		Logger:    s.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	notesFlow.Mount(ctx)
	if err := outcome(notesFlow, recorder); err != nil {
		notesFlow.Unmount()
		return nil, nil, err
	}
	return notesFlow, recorder, nil
}

// outcome converts the flow's view into an error: a redirect to login means the
// session is gone, and a view error is the message a user would see.
func outcome(notesFlow *flow.NotesFlow, recorder *flow.RouteRecorder) error {
	if route, ok := recorder.Last(); ok && route == flow.RouteLogin {
		return errSessionExpired
	}
	if message := notesFlow.View().Error; message != "" {
		return errors.New(message)
	}
	return nil
}
