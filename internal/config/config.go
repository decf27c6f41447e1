package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env string `env:"ENV" envDefault:"development"`

	// Server
	Port string `env:"PORT" envDefault:"8080"`

	// Database
	DBDriver      string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost        string `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string `env:"DB_PORT" envDefault:"5432"`
	DBUser        string `env:"DB_USER" envDefault:"expensetrack"`
	DBPassword    string `env:"DB_PASSWORD" envDefault:"expensetrack"`
	DBName        string `env:"DB_NAME" envDefault:"expensetrack"`
	DBSSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	DBPath        string `env:"DB_PATH" envDefault:"expensetrack.db"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"fallback-secret-key-for-dev-only"`
	JWTExpirationDur time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`

	// ImportAPIKey enables unattended CSV imports when set.
	ImportAPIKey string `env:"IMPORT_API_KEY"`

	// AdminEmails lists the addresses granted the admin role on registration.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Budget report presentation
	ReportDisplayPlaces int32  `env:"REPORT_DISPLAY_PLACES" envDefault:"2"`
	ReportTotalsLabel   string `env:"REPORT_TOTALS_LABEL" envDefault:"Totals"`
}

var (
	appConfig *Config
	mu        sync.Mutex
)

// Load loads configuration from the .env file (if any) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := parse(env.Options{})
	if err != nil {
		return nil, err
	}

	Set(cfg)
	return cfg, nil
}

// LoadFrom builds a configuration from an explicit environment map without
// touching the process environment or the .env file.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", cfg.DBDriver)
	}

	if cfg.ReportDisplayPlaces < 0 || cfg.ReportDisplayPlaces > 4 {
		return nil, fmt.Errorf("REPORT_DISPLAY_PLACES must be between 0 and 4, got %d", cfg.ReportDisplayPlaces)
	}

	for i, email := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}

	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()
	if appConfig == nil {
		cfg, err := parse(env.Options{})
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		appConfig = cfg
	}
	return appConfig
}

// Set replaces the process-wide configuration.
func Set(cfg *Config) {
	mu.Lock()
	appConfig = cfg
	mu.Unlock()
}

// IsAdminEmail reports whether the given address is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin != "" && admin == email {
			return true
		}
	}
	return false
}

// PostgresURL returns the connection URL used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
