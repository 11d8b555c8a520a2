package main

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Long:  `Display a note with its content rendered as markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		format, err := ui.ParseFormat(output)
		if err != nil {
			return err
		}

		notes, err := mountNotes(cmd.Context(), flow.ConfirmerFunc(func(string) bool { return false }))
		if err != nil {
			return err
		}
		defer notes.close()

		note, ok := notes.find(id)
		if !ok {
			return noteNotFound(id)
		}
		return ui.WriteNote(cmd.OutOrStdout(), note, format)
	},
}

func init() {
	showCmd.Flags().StringP("output", "o", string(ui.FormatText), "output format (text, json, yaml)")
	notesCmd.AddCommand(showCmd)
}
