package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a note",
	Long: `Create a note. Content comes from --content, --file, or $EDITOR when
neither is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		content, err := resolveContent(cmd)
		if err != nil {
			return err
		}

		notes, err := mountNotes(cmd.Context(), flow.ConfirmerFunc(func(string) bool { return false }))
		if err != nil {
			return err
		}
		defer notes.close()

		before := len(notes.flow.View().Notes)
		if err := notes.flow.SetNewNote(title, content); err != nil {
			return err
		}
		if err := notes.flow.Create(cmd.Context()); err != nil {
			return err
		}
		if err := notes.err(); err != nil {
			return err
		}

		list := notes.flow.View().Notes
		if len(list) <= before {
			return errors.New(flow.MessageCreateFailed)
		}
		created := list[len(list)-1]
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created note %d: %s", created.ID, created.Title)))
		return nil
	},
}

func resolveContent(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("content") {
		content, _ := cmd.Flags().GetString("content")
		return content, nil
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}
	content, err := openEditor("")
	if err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}
	return content, nil
}

func init() {
	addCmd.Flags().StringP("content", "c", "", "note content")
	addCmd.Flags().StringP("file", "f", "", "read content from file")
	addCmd.MarkFlagsMutuallyExclusive("content", "file")
	notesCmd.AddCommand(addCmd)
}
