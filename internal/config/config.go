package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreNeo4j    = "neo4j"
)

// Config contains runtime settings for the interview service
type Config struct {
	LogLevel  string
	LogFormat string
	Host      string // default 0.0.0.0
	Port      string // default PORT env or 8080

	Store struct {
		Driver  string
		DSN     string
		Migrate bool
	}
	Neo4j struct {
		URI      string
		Username string
		Password string
		Database string
	}
	Redis struct {
		Address  string
		Password string
		DB       int
		Stream   string
	}
	Google struct {
		CredentialsPath  string
		CalendarID       string
		CalendarUpdates  string
		GmailCredentials string
		GmailToken       string
		GmailSender      string
	}
	AI struct {
		Provider  string
		APIKey    string
		Model     string
		Project   string
		Location  string
		MaxTokens int
	}

	SessionSecret     string
	SessionTTL        time.Duration
	DependencyTimeout time.Duration
	ReminderSchedule  string
	ShutdownTimeout   time.Duration
}

// Addr is the listen address
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load populates config from environment variables. A .env file in the
// working directory is read first when present; real env wins over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var cfg Config
	var problems []string

	cfg.LogLevel = env("LOG_LEVEL", "info")
	cfg.LogFormat = env("LOG_FORMAT", "json")
	cfg.Host = env("HTTP_HOST", "0.0.0.0")
	cfg.Port = env("PORT", "8080")

	cfg.Store.Driver = strings.ToLower(env("STORE_DRIVER", StoreSQLite))
	cfg.Store.DSN = env("STORE_DSN", "file:recruito.db")
	cfg.Store.Migrate = env("STORE_MIGRATE", "true") == "true"

	cfg.Neo4j.URI = getenv("NEO4J_URI")
	cfg.Neo4j.Username = getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = getenv("NEO4J_PASSWORD")
	cfg.Neo4j.Database = getenv("NEO4J_DATABASE")

	cfg.Redis.Address = getenv("REDIS_ADDR")
	cfg.Redis.Password = getenv("REDIS_PASSWORD")
	cfg.Redis.Stream = env("REDIS_STREAM", "recruito:notifications")

	cfg.Google.CredentialsPath = getenv("GOOGLE_APPLICATION_CREDENTIALS")
	cfg.Google.CalendarID = env("GOOGLE_CALENDAR_ID", "primary")
	cfg.Google.CalendarUpdates = env("GOOGLE_CALENDAR_SEND_UPDATES", "all")
	cfg.Google.GmailCredentials = getenv("GMAIL_CREDENTIALS")
	cfg.Google.GmailToken = getenv("GMAIL_TOKEN")
	cfg.Google.GmailSender = getenv("GMAIL_SENDER")

	cfg.AI.Provider = strings.ToLower(env("AI_PROVIDER", "gemini"))
	cfg.AI.APIKey = getenv("AI_API_KEY")
	cfg.AI.Model = getenv("AI_MODEL")
	cfg.AI.Project = getenv("GOOGLE_CLOUD_PROJECT")
	cfg.AI.Location = env("GOOGLE_CLOUD_LOCATION", "us-central1")

	cfg.SessionSecret = getenv("SESSION_SECRET")
	cfg.ReminderSchedule = env("REMINDER_SCHEDULE", "@every 5m")

	intVar := func(key string, fallback int, dst *int) {
		n, err := strconv.Atoi(env(key, strconv.Itoa(fallback)))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = n
	}
	durationVar := func(key string, fallback time.Duration, dst *time.Duration) {
		d, err := time.ParseDuration(env(key, fallback.String()))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = d
	}

	intVar("REDIS_DB", 0, &cfg.Redis.DB)
	intVar("AI_MAX_TOKENS", 0, &cfg.AI.MaxTokens)
	durationVar("SESSION_TTL", 12*time.Hour, &cfg.SessionTTL)
	durationVar("DEPENDENCY_TIMEOUT", 10*time.Second, &cfg.DependencyTimeout)
	durationVar("SHUTDOWN_TIMEOUT", 10*time.Second, &cfg.ShutdownTimeout)

	var missingVars []string

	if cfg.SessionSecret == "" {
		missingVars = append(missingVars, "SESSION_SECRET")
	}

	switch cfg.Store.Driver {
	case StoreSQLite, StorePostgres:
	case StoreNeo4j:
		if cfg.Neo4j.URI == "" {
			missingVars = append(missingVars, "NEO4J_URI")
		}
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER: unknown driver %q", cfg.Store.Driver))
	}

	if len(missingVars) > 0 {
		problems = append([]string{"missing required environment variables: " + strings.Join(missingVars, ", ")}, problems...)
	}
	if len(problems) > 0 {
		return cfg, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}
