package main

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessionStore.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged out."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
