package initializers

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port     string        `env:"PORT,default=8080"`
	Secret   string        `env:"SECRET"`
	TokenTTL time.Duration `env:"TOKEN_TTL,default=24h"`
	DBURL    string        `env:"DB_URL"`
	LogLevel string        `env:"LOG_LEVEL,default=info"`
	// Comma separated list of emails granted the admin role at onboarding.
	AdminEmails string `env:"ADMIN_EMAILS"`

	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiProModel   string        `env:"GEMINI_PRO_MODEL,default=gemini-3-pro-preview"`
	GeminiFlashModel string        `env:"GEMINI_FLASH_MODEL,default=gemini-3-flash-preview"`
	AITimeout        time.Duration `env:"AI_TIMEOUT,default=30s"`

	PresenceTTL              time.Duration `env:"PRESENCE_TTL,default=5m"`
	PresenceSweepInterval    time.Duration `env:"PRESENCE_SWEEP_INTERVAL,default=10s"`
	CompanionChatDelay       time.Duration `env:"COMPANION_CHAT_DELAY,default=1200ms"`
	CompanionReflectionDelay time.Duration `env:"COMPANION_REFLECTION_DELAY,default=1500ms"`
	WeeklySummarySchedule    string        `env:"WEEKLY_SUMMARY_SCHEDULE,default=0 18 * * SUN"`

	ResendAPIKey               string `env:"RESEND_API_KEY"`
	EmailFrom                  string `env:"EMAIL_FROM,default=Siilah <circles@siilah.app>"`
	FirebaseServiceAccountPath string `env:"FIREBASE_SERVICE_ACCOUNT_PATH"`
}

var Config AppConfig

var ErrMissingSecret = errors.New("SECRET must be set to sign and verify tokens")

// LoadEnv reads an optional .env file and decodes the process environment into Config.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg, err := DecodeConfig()
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// DecodeConfig decodes the environment into a fresh AppConfig, applying defaults.
func DecodeConfig() (AppConfig, error) {
	var cfg AppConfig
	err := envdecode.Decode(&cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return AppConfig{}, fmt.Errorf("failed to decode environment: %w", err)
	}

	if strings.TrimSpace(cfg.Secret) == "" {
		return AppConfig{}, ErrMissingSecret
	}
	if cfg.PresenceTTL <= 0 {
		return AppConfig{}, fmt.Errorf("PRESENCE_TTL must be positive, got %s", cfg.PresenceTTL)
	}
	if cfg.PresenceSweepInterval <= 0 {
		return AppConfig{}, fmt.Errorf("PRESENCE_SWEEP_INTERVAL must be positive, got %s", cfg.PresenceSweepInterval)
	}
	return cfg, nil
}

// AdminEmailList splits ADMIN_EMAILS into trimmed, non-empty entries.
func (c AppConfig) AdminEmailList() []string {
	var emails []string
	for _, email := range strings.Split(c.AdminEmails, ",") {
		if email = strings.TrimSpace(email); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

// JWTSecret returns the token signing key, falling back to the SECRET
// variable when Config was never decoded. An empty key is an error.
func JWTSecret() ([]byte, error) {
	secret := Config.Secret
	if secret == "" {
		secret = os.Getenv("SECRET")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return []byte(secret), nil
}

func TokenTTL() time.Duration {
	if Config.TokenTTL > 0 {
		return Config.TokenTTL
	}
	return 24 * time.Hour
}
