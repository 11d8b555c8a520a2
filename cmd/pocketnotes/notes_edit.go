package main

import (
	"errors"
	"fmt"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note",
	Long: `Change a note's title and/or content. Without --title or --content the
content opens in $EDITOR.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}

		notes, err := mountNotes(cmd.Context(), flow.ConfirmerFunc(func(string) bool { return false }))
		if err != nil {
			return err
		}
		defer notes.close()

		if err := notes.flow.BeginEdit(id); err != nil {
			if errors.Is(err, flow.ErrNoteNotFound) {
				return noteNotFound(id)
			}
			return err
		}
		draft := notes.flow.View().Editing
		title, content := draft.Title, draft.Content

		titleChanged := cmd.Flags().Changed("title")
		contentChanged := cmd.Flags().Changed("content")
		if titleChanged {
			title, _ = cmd.Flags().GetString("title")
		}
		if contentChanged {
			content, _ = cmd.Flags().GetString("content")
		}
		if !titleChanged && !contentChanged {
			edited, err := openEditor(content)
			if err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}
			if edited == content {
				notes.flow.CancelEdit()
				fmt.Fprintln(cmd.OutOrStdout(), "No changes made.")
				return nil
			}
			content = edited
		}

		if err := notes.flow.StageEdit(title, content); err != nil {
			return err
		}
		if err := notes.flow.SaveEdit(cmd.Context()); err != nil {
			return err
		}
		if err := notes.err(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Updated note %d", id)))
		return nil
	},
}

func init() {
	editCmd.Flags().StringP("title", "t", "", "new title")
	editCmd.Flags().StringP("content", "c", "", "new content")
	notesCmd.AddCommand(editCmd)
}
