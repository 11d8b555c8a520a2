package main

import (
	"bufio"
	"fmt"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a note",
	Long:  `Delete a note after confirmation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		reader := bufio.NewReader(cmd.InOrStdin())
		confirmer := flow.ConfirmerFunc(func(message string) bool {
			return force || confirm(reader, cmd.OutOrStdout(), message)
		})

		notes, err := mountNotes(cmd.Context(), confirmer)
		if err != nil {
			return err
		}
		defer notes.close()

		if _, ok := notes.find(id); !ok {
			return noteNotFound(id)
		}
		if err := notes.flow.Delete(cmd.Context(), id); err != nil {
			return err
		}
		if err := notes.err(); err != nil {
			return err
		}
		if _, stillThere := notes.find(id); stillThere {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted note %d", id)))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	notesCmd.AddCommand(rmCmd)
}
