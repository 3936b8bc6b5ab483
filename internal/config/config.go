package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	TelegramBotToken string

	// Model provider
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	WalletsSheetName         string
	CategoriesSheetName      string
	RefundsSheetName         string
	DataSheetName            string

	// Agent
	InstructionFile     string
	AgentMaxSteps       int
	AgentMaxToolRetries int

	// Sessions
	SessionTTL        time.Duration
	SessionMaxEntries int
	SessionMaxHistory int

	// Backend selection
	DataBackend string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		WalletsSheetName:         getEnv("WALLETS_SHEET_NAME", "wallets"),
		CategoriesSheetName:      getEnv("CATEGORIES_SHEET_NAME", "categories"),
		RefundsSheetName:         getEnv("REFUNDS_SHEET_NAME", "refunds_to"),
		DataSheetName:            getEnv("DATA_SHEET_NAME", "data"),

		InstructionFile:     getEnv("INSTRUCTION_FILE", ""),
		AgentMaxSteps:       getEnvInt("AGENT_MAX_STEPS", 10),
		AgentMaxToolRetries: getEnvInt("AGENT_MAX_TOOL_RETRIES", 3),

		SessionTTL:        getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionMaxEntries: getEnvInt("SESSION_MAX_ENTRIES", 1000),
		SessionMaxHistory: getEnvInt("SESSION_MAX_HISTORY", 50),

		DataBackend: getEnv("DATA_BACKEND", "sheets"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.TelegramBotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.OpenAIAPIKey == "" {
		errors = append(errors, "OPENAI_API_KEY is required")
	}
	if c.OpenAIModel == "" {
		errors = append(errors, "OPENAI_MODEL cannot be empty")
	}

	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when using sheets backend")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
		for _, sheet := range []struct{ name, value string }{
			{"WALLETS_SHEET_NAME", c.WalletsSheetName},
			{"CATEGORIES_SHEET_NAME", c.CategoriesSheetName},
			{"REFUNDS_SHEET_NAME", c.RefundsSheetName},
			{"DATA_SHEET_NAME", c.DataSheetName},
		} {
			if sheet.value == "" {
				errors = append(errors, fmt.Sprintf("%s cannot be empty", sheet.name))
			}
		}
	}

	if c.InstructionFile != "" {
		if _, err := os.Stat(c.InstructionFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("instruction file does not exist: %s", c.InstructionFile))
		}
	}

	if c.AgentMaxSteps < 1 {
		errors = append(errors, fmt.Sprintf("invalid agent max steps %d: must be at least 1", c.AgentMaxSteps))
	}
	if c.AgentMaxToolRetries < 1 {
		errors = append(errors, fmt.Sprintf("invalid agent max tool retries %d: must be at least 1", c.AgentMaxToolRetries))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMaxEntries < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max entries %d: must be at least 1", c.SessionMaxEntries))
	}
	if c.SessionMaxHistory < 4 {
		errors = append(errors, fmt.Sprintf("invalid session max history %d: must be at least 4 to keep a full tool round trip", c.SessionMaxHistory))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
