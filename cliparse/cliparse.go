package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for settings that are optional.
const (
	DefaultPort                = 3318
	DefaultDatabaseType        = "sqlite"
	DefaultMaxVotesPerInterval = 10
	DefaultVoteInterval        = time.Hour
	DefaultStoreTimeout        = 5 * time.Second
	DefaultLogLevel            = "info"
	DefaultEnvFile             = ".env"
)

type Config struct {
	Port                int
	DatabaseURL         string
	DatabaseType        string
	TokenSalt           string
	MaxVotesPerInterval int
	VoteInterval        time.Duration
	StoreTimeout        time.Duration
	LogLevel            string
	LogFile             string
}

// ParseFlags reads flags, then fills anything unset from the environment.
// A .env file (or the one named by -env) is loaded first; variables already
// present in the environment are not overwritten by it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("content-vote", flag.ContinueOnError)

	fs.StringVar(&envFile, "env", DefaultEnvFile, "Optional .env file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSalt, "token-salt", "", "User token and IP hash salt (prefer env)")

	// Voting limits
	fs.IntVar(&cfg.MaxVotesPerInterval, "max-votes", 0, "Max votes per user per interval")
	fs.DurationVar(&cfg.VoteInterval, "vote-interval", 0, "Rate limit window")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", 0, "Per-request store timeout")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Log file (stdout when empty)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", DefaultDatabaseType)
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.TokenSalt == "" {
		cfg.TokenSalt = os.Getenv("TOKEN_SALT")
	}
	if cfg.TokenSalt == "" {
		return Config{}, errors.New("TOKEN_SALT required")
	}

	if cfg.MaxVotesPerInterval == 0 {
		n, err := envInt("MAX_VOTES_PER_INTERVAL", DefaultMaxVotesPerInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxVotesPerInterval = n
	}
	if cfg.MaxVotesPerInterval < 1 {
		return Config{}, errors.New("MAX_VOTES_PER_INTERVAL must be at least 1")
	}

	var err error
	if cfg.VoteInterval == 0 {
		if cfg.VoteInterval, err = envDuration("VOTE_INTERVAL", DefaultVoteInterval); err != nil {
			return Config{}, err
		}
	}
	if cfg.StoreTimeout == 0 {
		if cfg.StoreTimeout, err = envDuration("STORE_TIMEOUT", DefaultStoreTimeout); err != nil {
			return Config{}, err
		}
	}
	if cfg.VoteInterval <= 0 || cfg.StoreTimeout <= 0 {
		return Config{}, errors.New("VOTE_INTERVAL and STORE_TIMEOUT must be positive")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envString("LOG_LEVEL", DefaultLogLevel)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("LOG_FILE")
	}

	return cfg, nil
}

// loadEnvFile loads path into the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
