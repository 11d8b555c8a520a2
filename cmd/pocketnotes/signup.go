package main

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long:  `Register a new account. Log in afterwards with 'pocketnotes login'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := submitCredentials(cmd, flow.ModeSignup)
		if err != nil {
			return err
		}
		printAuthResult(cmd, view.Notice)
		return nil
	},
}

func init() {
	addCredentialFlags(signupCmd)
	rootCmd.AddCommand(signupCmd)
}
