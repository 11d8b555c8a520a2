package main

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/config"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and session details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "API:       %s\n", clientConfig.APIURL)
		fmt.Fprintf(out, "Session:   %s (%s)\n", clientConfig.SessionDriver, sessionLocation())

		switch {
		case isUnavailable(sessionStore):
			fmt.Fprintln(out, "Logged in: no (session storage unavailable)")
		case sessionStore.IsAuthenticated():
			fmt.Fprintln(out, "Logged in: yes")
		default:
			fmt.Fprintln(out, "Logged in: no")
		}
		return nil
	},
}

func sessionLocation() string {
	if clientConfig.SessionDriver == config.SessionDriverMemory {
		return "process memory"
	}
	if clientConfig.SessionPath != "" {
		return clientConfig.SessionPath
	}
	if path := config.DefaultSessionPath(clientConfig.SessionDriver); path != "" {
		return path
	}
	return "unresolved"
}

func isUnavailable(store session.Store) bool {
	_, unavailable := store.(session.UnavailableStore)
	return unavailable
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
