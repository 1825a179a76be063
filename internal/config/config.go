package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
	"github.com/ejnero-dev/wall-e-research-sub001/pkg/validator"
)

type Config struct {
	AppEnv   string
	MongoURI string

	// Audit DB (MySQL)
	AuditUser string
	AuditPass string
	AuditHost string
	AuditName string

	// Review channel
	WebhookURL string

	// Regime settings
	Regime                   core.Regime
	RequireHumanConfirmation bool
	MaxMessagesPerHour       int
	MinDelaySeconds          int
	RiskHighThreshold        int
	RiskMediumThreshold      int
	LongDistanceKm           float64
	WorkerLimit              int
	ActionTTLHours           int

	// Intake API
	Port string
}

func Load() *Config {
	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		MongoURI: getEnv("MONGO_URI", "mongodb://mongo:27017"),

		AuditUser: getEnv("AUDIT_DB_USER", "walle"),
		AuditPass: getEnv("AUDIT_DB_PASS", "walle_password"),
		AuditHost: getEnv("AUDIT_DB_HOST", "audit_sql_db"),
		AuditName: getEnv("AUDIT_DB_NAME", "walle_audit"),

		WebhookURL: getEnv("REVIEW_WEBHOOK_URL", ""),

		Regime:                   core.Regime(getEnv("REGIME", "supervised")),
		RequireHumanConfirmation: getEnvBool("REQUIRE_HUMAN_CONFIRMATION", true),
		MaxMessagesPerHour:       getEnvInt("MAX_MESSAGES_PER_HOUR", 20),
		MinDelaySeconds:          getEnvInt("MIN_DELAY_SECONDS", 30),
		RiskHighThreshold:        getEnvInt("RISK_HIGH_THRESHOLD", 70),
		RiskMediumThreshold:      getEnvInt("RISK_MEDIUM_THRESHOLD", 30),
		LongDistanceKm:           getEnvFloat("LONG_DISTANCE_KM", 100),
		WorkerLimit:              getEnvInt("WORKER_LIMIT", 8),
		ActionTTLHours:           getEnvInt("ACTION_TTL_HOURS", 24),

		Port: getEnv("PORT", "8080"),
	}
}

// Validate rejects inconsistent configuration at startup so regime mistakes
// are never discovered mid-run on a per-message basis.
func (c *Config) Validate() error {
	if err := validator.Required(c.MongoURI, "MONGO_URI"); err != nil {
		return err
	}
	if err := validator.Required(c.Port, "PORT"); err != nil {
		return err
	}
	if err := validator.OneOf(string(c.Regime), "REGIME",
		string(core.RegimeAutonomous), string(core.RegimeSupervised)); err != nil {
		return err
	}
	if c.Regime == core.RegimeSupervised && !c.RequireHumanConfirmation {
		return fmt.Errorf("supervised regime requires human confirmation to be enabled")
	}
	if err := validator.Positive(c.MaxMessagesPerHour, "MAX_MESSAGES_PER_HOUR"); err != nil {
		return err
	}
	if err := validator.Positive(c.MinDelaySeconds, "MIN_DELAY_SECONDS"); err != nil {
		return err
	}
	if err := validator.Range(c.RiskHighThreshold, 1, 100, "RISK_HIGH_THRESHOLD"); err != nil {
		return err
	}
	if err := validator.Range(c.RiskMediumThreshold, 1, 100, "RISK_MEDIUM_THRESHOLD"); err != nil {
		return err
	}
	if err := validator.Ordered(c.RiskMediumThreshold, c.RiskHighThreshold, "risk"); err != nil {
		return err
	}
	if err := validator.PositiveFloat(c.LongDistanceKm, "LONG_DISTANCE_KM"); err != nil {
		return err
	}
	if err := validator.Positive(c.WorkerLimit, "WORKER_LIMIT"); err != nil {
		return err
	}
	if err := validator.Positive(c.ActionTTLHours, "ACTION_TTL_HOURS"); err != nil {
		return err
	}
	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
