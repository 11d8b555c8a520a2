package main

import (
	"errors"
	"fmt"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/config"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/logging"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/ui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile      string
	clientConfig config.ClientConfig
	logger       = zap.NewNop()
	sessionStore session.Store
	apiClient    *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "pocketnotes",
	Short: "A minimal notes client",
	Long: `pocketnotes keeps short notes on a notes server.

Sign up, log in, then add, edit, list and remove notes from the terminal,
or expose them to an AI agent with 'pocketnotes mcp'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch flow.Home(sessionStore, flow.NavigatorFunc(func(flow.Route) {})) {
		case flow.RouteNotes:
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged in. Run 'pocketnotes notes list' to see your notes."))
		default:
			fmt.Fprintln(cmd.OutOrStdout(), ui.Notice("Not logged in. Run 'pocketnotes login' or 'pocketnotes signup'."))
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.ApplyClientDefaults(viper.GetViper())
	defaults := config.NewClientViper()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("api-url", defaults.GetString("api.url"), "Notes API base URL")
	flags.Duration("api-timeout", defaults.GetDuration("api.timeout"), "Request timeout (0 waits indefinitely)")
	flags.String("session-driver", defaults.GetString("session.driver"), "Session storage driver (sqlite, badger, memory)")
	flags.String("session-path", defaults.GetString("session.path"), "Session storage location")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag("api.url", "api-url")
	bindFlag("api.timeout", "api-timeout")
	bindFlag("session.driver", "session-driver")
	bindFlag("session.path", "session-path")
	bindFlag("log.level", "log-level")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configNotFound) {
			return err
		}
	}
	return nil
}

// setup loads configuration and opens the session and API client shared by every command.
func setup() error {
	if err := initConfig(); err != nil {
		return err
	}

	loaded, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return err
	}
	clientConfig = loaded

	consoleLogger, err := logging.NewConsoleLogger(clientConfig.LogLevel)
	if err != nil {
		return err
	}
	logger = consoleLogger

	sessionStore = session.Open(session.Config{
		Driver: clientConfig.SessionDriver,
		Path:   clientConfig.SessionPath,
		Logger: logger,
	})

	apiClient, err = api.NewClient(api.Config{
		BaseURL: clientConfig.APIURL,
		Session: sessionStore,
		Logger:  logger,
		Timeout: clientConfig.APITimeout,
	})
	return err
}

func teardown() error {
	defer logger.Sync() //nolint:errcheck
	if sessionStore == nil {
		return nil
	}
	return sessionStore.Close()
}
