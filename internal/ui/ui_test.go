package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

func sampleNotes() []api.Note {
	updated := api.NewTimestamp(time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC))
	return []api.Note{
		{
			ID:        1,
			Title:     "Groceries",
			Content:   "milk\neggs",
			UserID:    7,
			CreatedAt: api.NewTimestamp(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
		},
		{
			ID:        2,
			Title:     "Ideas",
			Content:   strings.Repeat("x", 100),
			UserID:    7,
			CreatedAt: api.NewTimestamp(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
			UpdatedAt: &updated,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"": FormatText, "TEXT": FormatText, " json ": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatNoteListShowsEmptyMessage(t *testing.T) {
	assert.Equal(t, "No notes yet\n", FormatNoteList(nil, "No notes yet"))
}

func TestFormatNoteListItemPreview(t *testing.T) {
	notes := sampleNotes()

	first := FormatNoteListItem(notes[0])
	assert.Contains(t, first, "#1")
	assert.Contains(t, first, "Groceries")
	assert.Contains(t, first, "milk")
	assert.NotContains(t, first, "eggs")

	second := FormatNoteListItem(notes[1])
	assert.Contains(t, second, strings.Repeat("x", previewWidth-3)+"...")
	assert.NotContains(t, second, strings.Repeat("x", previewWidth))
}

func TestFormatNoteHeaderOmitsMissingUpdate(t *testing.T) {
	notes := sampleNotes()

	assert.NotContains(t, FormatNoteHeader(notes[0]), "Updated:")
	assert.Contains(t, FormatNoteHeader(notes[1]), "Updated:")
}

func TestFormatNoteContentKeepsText(t *testing.T) {
	out := FormatNoteContent("# Heading\n\nsome *body* text")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "body")
}

func TestWriteNotesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotes(&buf, sampleNotes(), FormatJSON, ""))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Groceries", decoded[0]["title"])
	assert.Equal(t, "2024-03-01T08:00:00Z", decoded[0]["created_at"])
	assert.Nil(t, decoded[0]["updated_at"])
	assert.Equal(t, "2024-03-02T09:30:00Z", decoded[1]["updated_at"])
}

func TestWriteNotesEmptyStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotes(&buf, nil, FormatJSON, "No notes yet"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteNoteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNote(&buf, sampleNotes()[0], FormatYAML))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded["id"])
	assert.Equal(t, "milk\neggs", decoded["content"])
	assert.Nil(t, decoded["updated_at"])
}

func TestWriteNoteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNote(&buf, sampleNotes()[0], FormatText))
	assert.Contains(t, buf.String(), "Groceries")
	assert.Contains(t, buf.String(), "milk")
}
