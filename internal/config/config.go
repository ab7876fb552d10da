package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every externally supplied setting the privacy core
// consumes. It is loaded once at startup and passed into each component
// at construction; there is no package-level instance.
type Config struct {
	ServerPort string

	// AuditRoot is the directory holding audit logs, alert files and
	// compliance reports.
	AuditRoot string

	// AlertsEnabled disables the alert engine entirely when false.
	AlertsEnabled bool

	// PolicyFile optionally points to a JSON policy document overriding
	// the default level->strategy mapping and critical-type set.
	PolicyFile string

	// DBDSN enables the custom-pattern repository when non-empty.
	DBDSN string

	// RedisURL enables the pattern cache when non-empty.
	RedisURL string

	// MinFreeDiskBytes is the free-space floor below which the health
	// check flags the audit subsystem.
	MinFreeDiskBytes uint64

	// ReportTopN truncates the per-data-type histogram in reports.
	ReportTopN int
}

// Load reads configuration from the environment, with .env support for
// local runs.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		AuditRoot:        getEnv("AUDIT_ROOT", "./audit"),
		AlertsEnabled:    getEnvAsBool("ALERTS_ENABLED", true),
		PolicyFile:       getEnv("POLICY_FILE", ""),
		DBDSN:            getEnv("DB_DSN", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		MinFreeDiskBytes: uint64(getEnvAsInt("MIN_FREE_DISK_MB", 100)) * 1024 * 1024,
		ReportTopN:       getEnvAsInt("REPORT_TOP_N", 10),
	}
}

// Validate returns a list of human-readable problems. An empty list
// means the configuration is usable; problems are reported, never
// raised as a crash.
func (c *Config) Validate() []string {
	var problems []string
	if strings.TrimSpace(c.AuditRoot) == "" {
		problems = append(problems, "audit root directory is not configured")
	}
	if c.ReportTopN <= 0 {
		problems = append(problems, fmt.Sprintf("report top-N must be positive, got %d", c.ReportTopN))
	}
	if c.MinFreeDiskBytes == 0 {
		problems = append(problems, "minimum free disk space is not configured")
	}
	if c.PolicyFile != "" {
		if _, _, err := c.LoadPolicy(); err != nil {
			problems = append(problems, fmt.Sprintf("policy file is invalid: %v", err))
		}
	}
	return problems
}

func getEnvAsBool(key string, fallback bool) bool {
	val := getEnv(key, "")
	if val == "true" || val == "1" || val == "TRUE" {
		return true
	}
	if val == "false" || val == "0" || val == "FALSE" {
		return false
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Invalid int value for %s: %s (using fallback %d)", key, val, fallback)
		return fallback
	}
	return i
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
