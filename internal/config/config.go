package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL     string
	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string

	// BackupRoot is the canonical directory where finished artifacts live.
	// Staging workspaces are created under BackupRoot/.staging so that the
	// final placement is a same-filesystem rename.
	BackupRoot string
	// EncryptionSecret is the single configured secret the encryption stage
	// derives its key from. Required only for jobs that request encryption.
	EncryptionSecret     string
	DefaultRetentionDays int
	// StaleJobMaxHours bounds how long a job may stay running before the
	// supervision cron marks it failed.
	StaleJobMaxHours int

	// MySQLDSN is used by the catalog to dump and replay MySQL databases.
	MySQLDSN      string
	MigrationsDir string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		TemporalAddress:      getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ServiceName:          getEnv("SERVICE_NAME", ""),
		BackupRoot:           getEnv("BACKUP_ROOT", "/var/backups/superpanel"),
		EncryptionSecret:     getEnv("BACKUP_ENCRYPTION_SECRET", ""),
		DefaultRetentionDays: getEnvInt("DEFAULT_RETENTION_DAYS", 30),
		StaleJobMaxHours:     getEnvInt("STALE_JOB_MAX_HOURS", 12),
		MySQLDSN:             getEnv("MYSQL_DSN", ""),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", ""),
	}

	if cfg.DefaultRetentionDays <= 0 {
		return nil, fmt.Errorf("DEFAULT_RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

// Validate checks that the fields required by the given service are set.
func (c *Config) Validate(service string) error {
	var missing []string

	required := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch service {
	case "backup-api":
		required("DATABASE_URL", c.DatabaseURL)
		required("TEMPORAL_ADDRESS", c.TemporalAddress)
		required("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		required("BACKUP_ROOT", c.BackupRoot)
	case "backup-worker":
		required("DATABASE_URL", c.DatabaseURL)
		required("TEMPORAL_ADDRESS", c.TemporalAddress)
		required("BACKUP_ROOT", c.BackupRoot)
	default:
		return fmt.Errorf("unknown service %q", service)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
