// Package ui renders notes for the terminal and encodes them for scripts.
package ui

import (
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

const (
	timeLayout   = "2006-01-02 15:04"
	wrapWidth    = 80
	previewWidth = 60
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

// FormatNoteListItem renders one entry of the notes list.
func FormatNoteListItem(note api.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s\n", cyan(fmt.Sprintf("#%d", note.ID)), bold(note.Title)))
	if preview := contentPreview(note.Content); preview != "" {
		sb.WriteString(fmt.Sprintf("       %s\n", preview))
	}
	sb.WriteString(fmt.Sprintf("       %s %s\n", faint("Updated:"), faint(lastChanged(note).Local().Format(timeLayout))))

	return sb.String()
}

// FormatNoteList renders the list, or emptyMessage when there is nothing to show.
func FormatNoteList(notes []api.Note, emptyMessage string) string {
	if len(notes) == 0 {
		return faint(emptyMessage) + "\n"
	}
	var sb strings.Builder
	for _, note := range notes {
		sb.WriteString(FormatNoteListItem(note))
	}
	return sb.String()
}

// FormatNoteHeader renders the metadata block shown above a note's body.
func FormatNoteHeader(note api.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(note.Title)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(fmt.Sprintf("%d", note.ID))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(note.CreatedAt.Local().Format(timeLayout))))
	if note.UpdatedAt != nil {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(note.UpdatedAt.Local().Format(timeLayout))))
	}

	sb.WriteString(Separator())
	return sb.String()
}

// FormatNoteContent renders markdown content, falling back to the raw text
// when no renderer is available.
func FormatNoteContent(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return content
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func Notice(msg string) string {
	return color.New(color.FgYellow).Sprint("! ") + msg
}

func contentPreview(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth-3]) + "..."
	}
	return line
}

func lastChanged(note api.Note) api.Timestamp {
	if note.UpdatedAt != nil {
		return *note.UpdatedAt
	}
	return note.CreatedAt
}
