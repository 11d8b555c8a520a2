package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("email", "e", "", "account email (prompted when omitted)")
	cmd.Flags().StringP("password", "p", "", "account password (prompted when omitted)")
}

// submitCredentials runs the auth flow in mode with the flag or prompted
// credentials and returns the final view.
func submitCredentials(cmd *cobra.Command, mode flow.AuthMode) (flow.AuthView, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.ErrOrStderr()
	if email == "" {
		entered, err := readLine(reader, out, "Email: ")
		if err != nil {
			return flow.AuthView{}, fmt.Errorf("read email: %w", err)
		}
		email = entered
	}
	if password == "" {
		entered, err := readPassword(cmd.InOrStdin(), reader, out)
		if err != nil {
			return flow.AuthView{}, fmt.Errorf("read password: %w", err)
		}
		password = entered
	}

	authFlow, err := flow.NewAuthFlow(flow.AuthConfig{
		Mode:      mode,
		API:       apiClient,
		Session:   sessionStore,
		Navigator: flow.NavigatorFunc(func(flow.Route) {}),
		Logger:    logger,
	})
	if err != nil {
		return flow.AuthView{}, err
	}
	authFlow.OnChange(func(view flow.AuthView) {
		if view.State == flow.AuthSubmitting {
			fmt.Fprintln(out, color.New(color.Faint).Sprint(view.SubmitLabel))
		}
	})

	if err := authFlow.Submit(cmd.Context(), email, password); err != nil {
		return flow.AuthView{}, err
	}
	view := authFlow.View()
	if view.State == flow.AuthFailed {
		return view, errors.New(view.Error)
	}
	return view, nil
}

func printAuthResult(cmd *cobra.Command, message string) {
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(message))
}
