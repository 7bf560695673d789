package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Backend selects the storage variant for request telemetry. Exactly one
// backend is active for the process lifetime.
type Backend string

const (
	BackendText  Backend = "text"
	BackendSQL   Backend = "sql"
	BackendNoSQL Backend = "nosql"
)

// DefaultStoreName is used for the SQL table and the NoSQL collection when
// no explicit name is configured.
const DefaultStoreName = "loggerData"

// Config holds all settings for the telemetry logger. It is loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	HTTPPort string
	LogLevel string
	Backend  Backend
	Text     TextConfig
	SQL      SQLConfig
	NoSQL    NoSQLConfig
}

// TextConfig holds file-backend settings.
type TextConfig struct {
	FilePath         string
	EnableEncryption bool
	EncryptionKey    string // hex-encoded, 32 bytes once decoded
}

// SQLConfig holds SQL-backend settings.
type SQLConfig struct {
	ConnectionString string
	TableName        string
}

// NoSQLConfig holds NoSQL-backend settings.
type NoSQLConfig struct {
	ConnectionString string
	CollectionName   string
}

// SinkTimeout bounds backend construction (connection + schema checks) at
// startup. Per-write calls carry no timeout.
const SinkTimeout = 5 * time.Second

// Load reads configuration from the environment (and a .env file when
// present) and validates it. Validation failures are fatal to startup.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		HTTPPort: cast.ToString(coalesce("HTTP_PORT", "8080")),
		LogLevel: cast.ToString(coalesce("LOG_LEVEL", "warning")),
		Backend:  Backend(cast.ToString(coalesce("DATABASE_TYPE", "text"))),
		Text: TextConfig{
			FilePath:         cast.ToString(coalesce("LOG_FILE_PATH", "./logs/log.txt")),
			EnableEncryption: cast.ToBool(coalesce("ENABLE_LOG_SECURITY", false)),
			EncryptionKey:    cast.ToString(coalesce("LOG_SECURITY_ENCRYPTION_KEY", "")),
		},
		SQL: SQLConfig{
			ConnectionString: os.Getenv("SQL_CONNECTION_STRING"),
			TableName:        cast.ToString(coalesce("SQL_TABLE_NAME", DefaultStoreName)),
		},
		NoSQL: NoSQLConfig{
			ConnectionString: os.Getenv("NOSQL_CONNECTION_STRING"),
			CollectionName:   cast.ToString(coalesce("NOSQL_COLLECTION_NAME", DefaultStoreName)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected backend has everything it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendText:
		if c.Text.FilePath == "" {
			return fmt.Errorf("LOG_FILE_PATH is required for the text backend")
		}
		if c.Text.EnableEncryption {
			if _, err := c.EncryptionKeyBytes(); err != nil {
				return err
			}
		}
	case BackendSQL:
		if c.SQL.ConnectionString == "" {
			return fmt.Errorf("SQL_CONNECTION_STRING is required for the sql backend")
		}
	case BackendNoSQL:
		if c.NoSQL.ConnectionString == "" {
			return fmt.Errorf("NOSQL_CONNECTION_STRING is required for the nosql backend")
		}
	default:
		return fmt.Errorf("DATABASE_TYPE must be one of text, sql or nosql, got %q", c.Backend)
	}
	return nil
}

// EncryptionKeyBytes decodes the configured hex key and checks its length.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.Text.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("LOG_SECURITY_ENCRYPTION_KEY must be valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("LOG_SECURITY_ENCRYPTION_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
	}
	return key, nil
}

func coalesce(key string, value interface{}) interface{} {
	val, exist := os.LookupEnv(key)
	if exist {
		return val
	}
	return value
}
