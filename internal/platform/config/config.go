package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// SchedulerConfig controls the background sweep.
type SchedulerConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	RetryOffset   time.Duration
	BatchSize     int
	Workers       int
}

// EngineConfig holds the policy knobs of the transfer and schedule engine.
type EngineConfig struct {
	Location          *time.Location
	DefaultRunTime    domain.RunTime
	RetryDelay        time.Duration
	MaxRetries        int
	VelocityWindow    time.Duration
	VelocityThreshold int
}

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	StoreDriver        string
	RunMigrations      bool
	MigrationsPath     string
	LockTimeout        time.Duration
	JWTSecret          string
	JWTIssuer          string
	AdminAPIKeyHash    string
	PosthogAPIKey      string
	PosthogEndpoint    string
	RateLimit          string
	CORSAllowedOrigins []string

	Scheduler SchedulerConfig
	Engine    EngineConfig

	// HashAPIKey is set by --hash-api-key; main prints its bcrypt hash and exits.
	HashAPIKey string
}

func setDefaults() {
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("LOCK_TIMEOUT", "5s")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "bank-backend")
	viper.SetDefault("ADMIN_API_KEY_HASH", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("TIMEZONE", "Asia/Seoul")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SWEEP_INTERVAL", "60s")
	viper.SetDefault("RETRY_OFFSET", "30s")
	viper.SetDefault("SWEEP_BATCH_SIZE", 100)
	viper.SetDefault("SWEEP_WORKERS", 4)
	viper.SetDefault("RETRY_DELAY", "10m")
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("DEFAULT_RUN_TIME", "09:30")
	viper.SetDefault("VELOCITY_WINDOW", "10m")
	viper.SetDefault("VELOCITY_THRESHOLD", 3)
}

// newFlagSet declares the command-line overrides. Each flag is bound to the
// viper key of the same meaning.
func newFlagSet() (*pflag.FlagSet, map[string]string) {
	fs := pflag.NewFlagSet("bank_backend", pflag.ContinueOnError)
	fs.String("port", "8080", "HTTP listen port")
	fs.String("store", StoreDriverPostgres, "storage backend: postgres or memory")
	fs.Bool("migrate", true, "apply database migrations on startup")
	fs.Bool("scheduler", true, "run the background schedule sweep")
	fs.String("hash-api-key", "", "print the bcrypt hash of the given admin API key and exit")
	return fs, map[string]string{
		"port":      "PORT",
		"store":     "STORE_DRIVER",
		"migrate":   "RUN_MIGRATIONS",
		"scheduler": "SCHEDULER_ENABLED",
	}
}

// LoadConfig loads configuration from command-line flags, environment
// variables and a .env file if present, in that order of precedence.
func LoadConfig(args []string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	fs, bindings := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for flagName, key := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	cfg := &Config{
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		StoreDriver:     strings.ToLower(viper.GetString("STORE_DRIVER")),
		RunMigrations:   viper.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
		LockTimeout:     viper.GetDuration("LOCK_TIMEOUT"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		JWTIssuer:       viper.GetString("JWT_ISSUER"),
		AdminAPIKeyHash: viper.GetString("ADMIN_API_KEY_HASH"),
		PosthogAPIKey:   viper.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: viper.GetString("POSTHOG_ENDPOINT"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		Scheduler: SchedulerConfig{
			Enabled:       viper.GetBool("SCHEDULER_ENABLED"),
			SweepInterval: viper.GetDuration("SWEEP_INTERVAL"),
			RetryOffset:   viper.GetDuration("RETRY_OFFSET"),
			BatchSize:     viper.GetInt("SWEEP_BATCH_SIZE"),
			Workers:       viper.GetInt("SWEEP_WORKERS"),
		},
		Engine: EngineConfig{
			RetryDelay:        viper.GetDuration("RETRY_DELAY"),
			MaxRetries:        viper.GetInt("MAX_RETRIES"),
			VelocityWindow:    viper.GetDuration("VELOCITY_WINDOW"),
			VelocityThreshold: viper.GetInt("VELOCITY_THRESHOLD"),
		},
	}
	cfg.HashAPIKey, _ = fs.GetString("hash-api-key")

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	loc, err := time.LoadLocation(viper.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Engine.Location = loc

	runTime, err := domain.ParseRunTime(viper.GetString("DEFAULT_RUN_TIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_RUN_TIME: %w", err)
	}
	cfg.Engine.DefaultRunTime = runTime

	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.AdminAPIKeyHash == "" {
		log.Println("Warning: ADMIN_API_KEY_HASH not set. Admin endpoints will reject every request.")
	}
	if cfg.Scheduler.Workers < 1 {
		cfg.Scheduler.Workers = 1
	}
	if cfg.Scheduler.BatchSize < 1 {
		cfg.Scheduler.BatchSize = 100
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set. Tests build on it.
func Default() *Config {
	return &Config{
		Port:        "8080",
		StoreDriver: StoreDriverMemory,
		RateLimit:   "100-M",
		JWTIssuer:   "bank-backend",
		Scheduler: SchedulerConfig{
			Enabled:       false,
			SweepInterval: time.Minute,
			RetryOffset:   30 * time.Second,
			BatchSize:     100,
			Workers:       4,
		},
		Engine: EngineConfig{
			Location:          time.UTC,
			DefaultRunTime:    domain.DefaultRunTime,
			RetryDelay:        10 * time.Minute,
			MaxRetries:        3,
			VelocityWindow:    10 * time.Minute,
			VelocityThreshold: 3,
		},
	}
}
