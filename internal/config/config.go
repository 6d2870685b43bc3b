package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/log"
)

// Default category lists offered by the write path and used as the
// canonical rows of the budget view.
var (
	DefaultExpenseCategories = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Health", "Other"}
	DefaultIncomeCategories  = []string{"Salary", "Freelance", "Business", "Investment", "Gift", "Other"}
)

type Config struct {
	// Flat-file stores
	LedgerFile string
	BudgetFile string

	// Dashboard
	Port        string
	SnapshotTTL time.Duration

	LogLevel string

	// SQLite mirror
	SQLiteDBPath   string
	MirrorInterval time.Duration

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export, disabled when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	CurrencySymbol    string
	ExpenseCategories []string
	IncomeCategories  []string
}

func Load() *Config {
	return &Config{
		LedgerFile: getEnv("LEDGER_FILE", "database/transactions.txt"),
		BudgetFile: getEnv("BUDGET_FILE", "database/budgets.txt"),

		Port:        getEnv("PORT", "8501"),
		SnapshotTTL: getEnvDuration("SNAPSHOT_TTL", 30*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		MirrorInterval: getEnvDuration("MIRROR_INTERVAL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "₹"),
		ExpenseCategories: getEnvList("EXPENSE_CATEGORIES", DefaultExpenseCategories),
		IncomeCategories:  getEnvList("INCOME_CATEGORIES", DefaultIncomeCategories),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.LedgerFile) == "" {
		errors = append(errors, "ledger file path cannot be empty")
	}
	if strings.TrimSpace(c.BudgetFile) == "" {
		errors = append(errors, "budget file path cannot be empty")
	}
	if c.LedgerFile != "" && filepath.Clean(c.LedgerFile) == filepath.Clean(c.BudgetFile) {
		errors = append(errors, fmt.Sprintf("ledger and budget must be different files, both are '%s'", c.LedgerFile))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.SnapshotTTL < 0 || c.SnapshotTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid snapshot TTL %v: must be between 0 and 1 hour", c.SnapshotTTL))
	}
	if c.MirrorInterval < time.Second || c.MirrorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be between 1 second and 24 hours", c.MirrorInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for Sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if strings.TrimSpace(c.CurrencySymbol) == "" {
		errors = append(errors, "currency symbol cannot be empty")
	}
	errors = append(errors, validateCategories("expense", c.ExpenseCategories)...)
	errors = append(errors, validateCategories("income", c.IncomeCategories)...)

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func validateCategories(kind string, categories []string) []string {
	if len(categories) == 0 {
		return []string{fmt.Sprintf("%s categories cannot be empty", kind)}
	}
	var errors []string
	seen := map[string]bool{}
	for _, c := range categories {
		key := strings.ToLower(c)
		if seen[key] {
			errors = append(errors, fmt.Sprintf("duplicate %s category '%s'", kind, c))
		}
		seen[key] = true
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

// getEnvList splits a comma-separated value, dropping blank items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
