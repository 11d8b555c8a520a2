package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func (s *Server) registerTools() {
	// list_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "list_notes",
		Description: "List the signed-in user's notes in creation order",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	}, s.handleListNotes)

	// create_note
	s.server.AddTool(&mcp.Tool{
		Name:        "create_note",
		Description: "Create a note with a title and content",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Note title"},
				"content": {"type": "string", "description": "Note content"}
			},
			"required": ["title", "content"]
		}`),
	}, s.handleCreateNote)

	// update_note
	s.server.AddTool(&mcp.Tool{
		Name:        "update_note",
		Description: "Update a note's title, content or both; omitted fields keep their value",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "Note ID"},
				"title": {"type": "string", "description": "New title"},
				"content": {"type": "string", "description": "New content"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdateNote)

	// delete_note
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note; confirm must be true",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "Note ID"},
				"confirm": {"type": "boolean", "description": "Must be true to delete"}
			},
			"required": ["id", "confirm"]
		}`),
	}, s.handleDeleteNote)
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notesFlow, _, err := s.mountNotes(ctx, false)
	if err != nil {
		return toolError(err), nil
	}
	defer notesFlow.Unmount()

	view := notesFlow.View()
	if len(view.Notes) == 0 {
		return toolText(view.EmptyMessage), nil
	}
	return toolJSON(view.Notes)
}

func (s *Server) handleCreateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	notesFlow, recorder, err := s.mountNotes(ctx, false)
	if err != nil {
		return toolError(err), nil
	}
	defer notesFlow.Unmount()

	before := len(notesFlow.View().Notes)
	if err := notesFlow.SetNewNote(params.Title, params.Content); err != nil {
		return toolError(err), nil
	}
	if err := notesFlow.Create(ctx); err != nil {
		return toolError(err), nil
	}
	if err := outcome(notesFlow, recorder); err != nil {
		return toolError(err), nil
	}

	notes := notesFlow.View().Notes
	if len(notes) <= before {
		return toolError(errors.New(flow.MessageCreateFailed)), nil
	}
	created := notes[len(notes)-1]
	s.logger.Debug("note created via mcp", zap.Int64("note_id", created.ID))
	return toolJSON(created)
}

func (s *Server) handleUpdateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID      int64   `json:"id"`
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}
	if params.Title == nil && params.Content == nil {
		return toolError(errors.New("nothing to update: provide title or content")), nil
	}

	notesFlow, recorder, err := s.mountNotes(ctx, false)
	if err != nil {
		return toolError(err), nil
	}
	defer notesFlow.Unmount()

	if err := notesFlow.BeginEdit(params.ID); err != nil {
		return toolError(noteError(params.ID, err)), nil
	}
	draft := notesFlow.View().Editing
	title, content := draft.Title, draft.Content
	if params.Title != nil {
		title = *params.Title
	}
	if params.Content != nil {
		content = *params.Content
	}
	if err := notesFlow.StageEdit(title, content); err != nil {
		return toolError(err), nil
	}
	if err := notesFlow.SaveEdit(ctx); err != nil {
		return toolError(err), nil
	}
	if err := outcome(notesFlow, recorder); err != nil {
		return toolError(err), nil
	}

	view := notesFlow.View()
	index := slices.IndexFunc(view.Notes, func(note api.Note) bool { return note.ID == params.ID })
	if index < 0 {
		return toolError(noteError(params.ID, flow.ErrNoteNotFound)), nil
	}
	return toolJSON(view.Notes[index])
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID      int64 `json:"id"`
		Confirm bool  `json:"confirm"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}
	if !params.Confirm {
		return toolError(errors.New("deletion not confirmed: set confirm to true")), nil
	}

	notesFlow, recorder, err := s.mountNotes(ctx, true)
	if err != nil {
		return toolError(err), nil
	}
	defer notesFlow.Unmount()

	if err := notesFlow.Delete(ctx, params.ID); err != nil {
		return toolError(noteError(params.ID, err)), nil
	}
	if err := outcome(notesFlow, recorder); err != nil {
		return toolError(err), nil
	}
	return toolText(fmt.Sprintf("Deleted note %d", params.ID)), nil
}

func noteError(id int64, err error) error {
	if errors.Is(err, flow.ErrNoteNotFound) {
		return fmt.Errorf("note %d not found", id)
	}
	return err
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
		IsError: true,
	}
}

func toolJSON(value any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return toolText(string(data)), nil
}
