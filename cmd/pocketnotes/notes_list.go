package main

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes in creation order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		view := notes.flow.View()
		return ui.WriteNotes(cmd.OutOrStdout(), view.Notes, format, view.EmptyMessage)
	},
}

func init() {
	listCmd.Flags().StringP("output", "o", string(ui.FormatText), "output format (text, json, yaml)")
	notesCmd.AddCommand(listCmd)
}
