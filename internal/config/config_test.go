package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "USER_RATE_LIMIT", "USER_RATE_WINDOW", "DEFAULT_TEMPERATURE", "NATS_ENABLED", "PROVIDER_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.UserRateLimit != 30 || cfg.UserRateWindow != 10*time.Minute {
		t.Errorf("user rate limit = %d/%s, want 30/10m", cfg.UserRateLimit, cfg.UserRateWindow)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Errorf("ProviderTimeout = %s, want 60s", cfg.ProviderTimeout)
	}
	if cfg.DefaultTemperature != 0.7 {
		t.Errorf("DefaultTemperature = %v, want 0.7", cfg.DefaultTemperature)
	}
	if cfg.NATSEnabled {
		t.Error("NATSEnabled should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("USER_RATE_LIMIT", "5")
	t.Setenv("USER_RATE_WINDOW", "1m")
	t.Setenv("DEFAULT_TEMPERATURE", "0.2")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:1234/v1")
	t.Setenv("ENV", "development")

	cfg := Load()

	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.UserRateLimit != 5 || cfg.UserRateWindow != time.Minute {
		t.Errorf("user rate limit = %d/%s", cfg.UserRateLimit, cfg.UserRateWindow)
	}
	if cfg.DefaultTemperature != 0.2 {
		t.Errorf("DefaultTemperature = %v", cfg.DefaultTemperature)
	}
	if !cfg.NATSEnabled {
		t.Error("NATSEnabled = false")
	}
	if cfg.OpenAIBaseURL != "http://localhost:1234/v1" {
		t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("USER_RATE_LIMIT", "many")
	t.Setenv("PROVIDER_TIMEOUT", "soon")
	t.Setenv("DEFAULT_TEMPERATURE", "warm")

	cfg := Load()

	if cfg.UserRateLimit != 30 {
		t.Errorf("UserRateLimit = %d, want 30", cfg.UserRateLimit)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Errorf("ProviderTimeout = %s, want 60s", cfg.ProviderTimeout)
	}
	if cfg.DefaultTemperature != 0.7 {
		t.Errorf("DefaultTemperature = %v, want 0.7", cfg.DefaultTemperature)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// godotenv never overrides a variable that is already present.
	t.Setenv("DATABASE_PATH", "")
	os.Unsetenv("DATABASE_PATH")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_PATH=/tmp/from-dotenv.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.DatabasePath != "/tmp/from-dotenv.db" {
		t.Errorf("DatabasePath = %q, want value from .env", cfg.DatabasePath)
	}
}
