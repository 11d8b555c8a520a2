package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesServerDefaults(t *testing.T) {
	configViper := NewViper()
	configViper.Set("auth.signing_secret", "secret")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected token ttl %s", cfg.TokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != defaultAllowedOrigin {
		t.Fatalf("unexpected allowed origins %#v", cfg.AllowedOrigins)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	if _, err := Load(NewViper()); err == nil {
		t.Fatalf("expected error for missing signing secret")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("POCKETNOTES_AUTH_SIGNING_SECRET", "from-env")
	t.Setenv("POCKETNOTES_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.SigningSecret != "from-env" {
		t.Fatalf("expected signing secret from env, got %q", cfg.SigningSecret)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected allowed origins %#v", cfg.AllowedOrigins)
	}
}

func TestLoadClientDefaults(t *testing.T) {
	cfg, err := LoadClient(NewClientViper())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.SessionDriver != SessionDriverSQLite {
		t.Fatalf("unexpected session driver %q", cfg.SessionDriver)
	}
	if cfg.APITimeout != 0 {
		t.Fatalf("expected no timeout by default, got %s", cfg.APITimeout)
	}
}

func TestLoadClientTrimsAPIURL(t *testing.T) {
	t.Setenv("POCKETNOTES_API_URL", "https://notes.example.com/api/")

	cfg, err := LoadClient(NewClientViper())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.APIURL != "https://notes.example.com/api" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
}

func TestLoadClientValidation(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value any
	}{
		{name: "relative-url", key: "api.url", value: "localhost"},
		{name: "unknown-driver", key: "session.driver", value: "redis"},
		{name: "negative-timeout", key: "api.timeout", value: "-1s"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewClientViper()
			configViper.Set(testCase.key, testCase.value)
			if _, err := LoadClient(configViper); err == nil {
				t.Fatalf("expected validation error for %s=%v", testCase.key, testCase.value)
			}
		})
	}
}

func TestDefaultSessionPathUsesXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got := DefaultSessionPath(SessionDriverSQLite); got != filepath.Join(tmpDir, "pocketnotes", "session.db") {
		t.Fatalf("unexpected sqlite session path %q", got)
	}
	if got := DefaultSessionPath(SessionDriverBadger); got != filepath.Join(tmpDir, "pocketnotes", "session.kv") {
		t.Fatalf("unexpected badger session path %q", got)
	}
}
