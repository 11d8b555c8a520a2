package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"gopkg.in/yaml.v3"
)

// Format selects how notes are written to stdout.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml, case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(value))); format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", value)
	}
}

type noteRecord struct {
	ID        int64   `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Content   string  `json:"content" yaml:"content"`
	UserID    int64   `json:"user_id" yaml:"user_id"`
	CreatedAt string  `json:"created_at" yaml:"created_at"`
	UpdatedAt *string `json:"updated_at" yaml:"updated_at"`
}

func newNoteRecord(note api.Note) noteRecord {
	record := noteRecord{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		UserID:    note.UserID,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
	}
	if note.UpdatedAt != nil {
		updatedAt := note.UpdatedAt.UTC().Format(time.RFC3339)
		record.UpdatedAt = &updatedAt
	}
	return record
}

// WriteNotes writes notes in the requested format. Text output shows
// emptyMessage for an empty list; structured formats emit an empty sequence.
func WriteNotes(w io.Writer, notes []api.Note, format Format, emptyMessage string) error {
	if format == FormatText {
		_, err := io.WriteString(w, FormatNoteList(notes, emptyMessage))
		return err
	}
	records := make([]noteRecord, 0, len(notes))
	for _, note := range notes {
		records = append(records, newNoteRecord(note))
	}
	return encode(w, records, format)
}

// WriteNote writes a single note in a structured format. Text output renders
// the header and markdown body.
func WriteNote(w io.Writer, note api.Note, format Format) error {
	if format == FormatText {
		_, err := io.WriteString(w, FormatNoteHeader(note)+FormatNoteContent(note.Content))
		return err
	}
	return encode(w, newNoteRecord(note), format)
}

func encode(w io.Writer, value any, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
