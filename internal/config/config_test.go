package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DATA_BACKEND", "memory")

	cfg := Load()
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("model=%q", cfg.OpenAIModel)
	}
	if cfg.DataSheetName != "data" || cfg.WalletsSheetName != "wallets" {
		t.Fatalf("sheet defaults: %q %q", cfg.DataSheetName, cfg.WalletsSheetName)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.SessionMaxEntries != 1000 {
		t.Fatalf("session defaults: %v %d", cfg.SessionTTL, cfg.SessionMaxEntries)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateMissingToken(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATA_BACKEND", "memory")

	err := Load().Validate()
	if err == nil || !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("err=%v", err)
	}
}

func TestValidateSheetsBackendNeedsCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("DATA_BACKEND", "sheets")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	err := Load().Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Fatalf("err=%v", err)
	}
	if !strings.Contains(err.Error(), "GOOGLE_SERVICE_ACCOUNT_FILE") {
		t.Fatalf("err=%v", err)
	}
}

func TestValidateSheetsBackendWithCredentialFile(t *testing.T) {
	setRequired(t)
	credFile := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(credFile, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATA_BACKEND", "sheets")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", credFile)

	if err := Load().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("DATA_BACKEND", "postgres")

	err := Load().Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid data backend") {
		t.Fatalf("err=%v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "v")
	t.Setenv("X_INT", "7")
	t.Setenv("X_BAD_INT", "seven")
	t.Setenv("X_DUR", "90s")

	if got := getEnv("X_STR", "d"); got != "v" {
		t.Fatalf("getEnv=%q", got)
	}
	if got := getEnv("X_MISSING", "d"); got != "d" {
		t.Fatalf("getEnv default=%q", got)
	}
	if got := getEnvInt("X_INT", 1); got != 7 {
		t.Fatalf("getEnvInt=%d", got)
	}
	if got := getEnvInt("X_BAD_INT", 1); got != 1 {
		t.Fatalf("getEnvInt bad=%d", got)
	}
	if got := getEnvDuration("X_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("getEnvDuration=%v", got)
	}
}
