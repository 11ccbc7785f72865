package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// HTTP server
	Port string `toml:"port"`

	// Persistence backend: "memory" or "sqlite"
	Backend      string `toml:"backend"`
	SQLiteDBPath string `toml:"sqlite_db_path"`

	// AMQP (optional; empty URL disables change publishing)
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Snapshot worker
	Sink             string        `toml:"sink"` // "file" or "sheets"
	SnapshotPath     string        `toml:"snapshot_path"`
	SnapshotInterval time.Duration `toml:"snapshot_interval"`

	// Google Sheets sink
	GoogleSpreadsheetID string `toml:"google_spreadsheet_id"`
	GoogleSheetName     string `toml:"google_sheet_name"`
}

// Load builds the configuration from environment variables, optionally
// overlaid by a TOML file named in CASHFLOW_CONFIG. Environment variables
// win over file values.
func Load() *Config {
	cfg := &Config{
		Port:         "8081",
		Backend:      "memory",
		SQLiteDBPath: "./data/cashflow.db",

		AMQPExchange: "cashflow",
		AMQPQueue:    "ledger_changes",

		Sink:             "file",
		SnapshotPath:     "./data/cashflow.csv",
		SnapshotInterval: 5 * time.Minute,

		GoogleSheetName: "Cashflow",
	}

	if path := strings.TrimSpace(os.Getenv("CASHFLOW_CONFIG")); path != "" {
		// Best effort: a missing or broken file falls back to env/defaults.
		_, _ = toml.DecodeFile(path, cfg)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Backend = getEnv("DATA_BACKEND", cfg.Backend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)

	cfg.Sink = getEnv("SNAPSHOT_SINK", cfg.Sink)
	cfg.SnapshotPath = getEnv("SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.SnapshotInterval = getEnvDuration("SNAPSHOT_INTERVAL", cfg.SnapshotInterval)

	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", cfg.GoogleSheetName)

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.Backend))
	}

	if c.Backend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.Sink {
	case "file":
		if c.SnapshotPath == "" {
			errs = append(errs, "snapshot path cannot be empty when using file sink")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SPREADSHEET_ID cannot be empty when using sheets sink")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid sink '%s': must be one of [file sheets]", c.Sink))
	}

	if c.SnapshotInterval <= 0 {
		errs = append(errs, "snapshot interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
