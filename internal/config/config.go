package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "POCKETNOTES"
	defaultHTTPAddress    = "0.0.0.0:8000"
	defaultDatabasePath   = "pocketnotes.db"
	defaultLogLevel       = "info"
	defaultTokenTTL       = 30
	defaultAllowedOrigin  = "http://localhost:3000"
	defaultAPIURL         = "http://localhost:8000"
	defaultClientLogLevel = "warn"
	defaultSessionDriver  = "sqlite"
)

// Session storage drivers understood by the client.
const (
	SessionDriverSQLite = "sqlite"
	SessionDriverBadger = "badger"
	SessionDriverMemory = "memory"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	SigningSecret  string
	DatabasePath   string
	TokenTTL       time.Duration
	AllowedOrigins []string
	LogLevel       string
}

// ClientConfig captures runtime configuration for the pocketnotes client.
type ClientConfig struct {
	APIURL        string
	APITimeout    time.Duration
	SessionDriver string
	SessionPath   string
	LogLevel      string
}

// NewViper returns a viper instance with server defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// NewClientViper returns a viper instance with client defaults and env bindings configured.
func NewClientViper() *viper.Viper {
	configViper := viper.New()
	ApplyClientDefaults(configViper)
	return configViper
}

func applyEnv(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()
}

// ApplyDefaults configures server defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	applyEnv(configViper)

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("token.ttl_minutes", defaultTokenTTL)
	configViper.SetDefault("cors.allowed_origins", []string{defaultAllowedOrigin})
}

// ApplyClientDefaults configures client defaults and env bindings on the provided viper instance.
func ApplyClientDefaults(configViper *viper.Viper) {
	applyEnv(configViper)

	configViper.SetDefault("api.url", defaultAPIURL)
	configViper.SetDefault("api.timeout", time.Duration(0))
	configViper.SetDefault("session.driver", defaultSessionDriver)
	configViper.SetDefault("session.path", "")
	configViper.SetDefault("log.level", defaultClientLogLevel)
}

// Load parses server configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		DatabasePath:   configViper.GetString("database.path"),
		TokenTTL:       time.Duration(configViper.GetInt("token.ttl_minutes")) * time.Minute,
		AllowedOrigins: splitOrigins(configViper.GetStringSlice("cors.allowed_origins")),
		LogLevel:       configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token.ttl_minutes must be positive")
	}
	return nil
}

// LoadClient parses client configuration from viper.
func LoadClient(configViper *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		APIURL:        strings.TrimRight(strings.TrimSpace(configViper.GetString("api.url")), "/"),
		APITimeout:    configViper.GetDuration("api.timeout"),
		SessionDriver: strings.ToLower(strings.TrimSpace(configViper.GetString("session.driver"))),
		SessionPath:   strings.TrimSpace(configViper.GetString("session.path")),
		LogLevel:      configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

func (c ClientConfig) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api.url is required")
	}
	parsed, err := url.Parse(c.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.url must be an absolute URL, got %q", c.APIURL)
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	switch c.SessionDriver {
	case SessionDriverSQLite, SessionDriverBadger, SessionDriverMemory:
	default:
		return fmt.Errorf("session.driver must be one of sqlite, badger, memory, got %q", c.SessionDriver)
	}
	return nil
}

// DefaultSessionPath returns the XDG location of the session database for the given driver.
// It returns an empty string when no home directory can be resolved.
func DefaultSessionPath(driver string) string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	name := "session.db"
	if driver == SessionDriverBadger {
		name = "session.kv"
	}
	return filepath.Join(configHome, "pocketnotes", name)
}

// splitOrigins accepts both list values and a single comma-separated env value.
func splitOrigins(values []string) []string {
	origins := make([]string, 0, len(values))
	for _, value := range values {
		for _, origin := range strings.Split(value, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	return origins
}
