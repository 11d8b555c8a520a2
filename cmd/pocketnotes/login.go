package main

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := submitCredentials(cmd, flow.ModeLogin); err != nil {
			return err
		}
		printAuthResult(cmd, "Logged in.")
		return nil
	},
}

func init() {
	addCredentialFlags(loginCmd)
	rootCmd.AddCommand(loginCmd)
}
