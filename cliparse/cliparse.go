package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port             int           `env:"PORT" envDefault:"3318"`
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"file:petition.db"`
	DatabaseType     string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	RemoteStoreURL   string        `env:"REMOTE_STORE_URL"`
	RemoteTimeout    time.Duration `env:"REMOTE_TIMEOUT" envDefault:"10s"`
	SyncInterval     time.Duration `env:"SYNC_INTERVAL" envDefault:"30s"`
	WriteRetries     int           `env:"WRITE_RETRIES" envDefault:"0"`
	TargetSignatures int           `env:"TARGET_SIGNATURES" envDefault:"1000"`
	ClientKeySalt    string        `env:"CLIENT_KEY_SALT"`
	PublicURL        string        `env:"PUBLIC_URL"`
}

// ParseFlags loads .env, then environment variables, then lets CLI flags override both
func ParseFlags(args []string) (Config, error) {
	var (
		cfg     Config
		flagCfg Config
		envFile string
	)

	fs := flag.NewFlagSet("ensuring-integrity", flag.ContinueOnError)

	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Network config (can be CLI args or env)
	fs.IntVar(&flagCfg.Port, "p", 0, "Server port")
	fs.StringVar(&flagCfg.DatabaseURL, "d", "", "Local cache database URL")
	fs.StringVar(&flagCfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&flagCfg.RemoteStoreURL, "r", "", "Remote signature store endpoint")
	fs.DurationVar(&flagCfg.SyncInterval, "sync-interval", 0, "Interval between sync passes")
	fs.DurationVar(&flagCfg.RemoteTimeout, "remote-timeout", 0, "Timeout for one remote store call")
	fs.IntVar(&flagCfg.WriteRetries, "write-retries", 0, "Re-read precondition retries on write (0 disables)")
	fs.IntVar(&flagCfg.TargetSignatures, "target", 0, "Signature goal")
	fs.StringVar(&flagCfg.PublicURL, "public-url", "", "Public URL used in share links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&flagCfg.ClientKeySalt, "client-salt", "", "Client cookie salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotenv(envFile); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Only flags the user actually passed override env
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = flagCfg.Port
		case "d":
			cfg.DatabaseURL = flagCfg.DatabaseURL
		case "t":
			cfg.DatabaseType = flagCfg.DatabaseType
		case "r":
			cfg.RemoteStoreURL = flagCfg.RemoteStoreURL
		case "sync-interval":
			cfg.SyncInterval = flagCfg.SyncInterval
		case "remote-timeout":
			cfg.RemoteTimeout = flagCfg.RemoteTimeout
		case "write-retries":
			cfg.WriteRetries = flagCfg.WriteRetries
		case "target":
			cfg.TargetSignatures = flagCfg.TargetSignatures
		case "public-url":
			cfg.PublicURL = flagCfg.PublicURL
		case "client-salt":
			cfg.ClientKeySalt = flagCfg.ClientKeySalt
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return fmt.Errorf("database type must be %q or %q", DatabaseSQLite, DatabasePostgres)
	}

	if cfg.RemoteStoreURL == "" {
		return errors.New("remote store URL required (use -r or REMOTE_STORE_URL env)")
	}
	if u, err := url.Parse(cfg.RemoteStoreURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("invalid remote store URL")
	}

	if cfg.SyncInterval <= 0 {
		return errors.New("sync interval must be positive")
	}
	if cfg.RemoteTimeout <= 0 {
		return errors.New("remote timeout must be positive")
	}
	if cfg.WriteRetries < 0 {
		return errors.New("write retries cannot be negative")
	}
	if cfg.TargetSignatures <= 0 {
		return errors.New("target signatures must be positive")
	}

	// Secrets - MUST be provided
	if cfg.ClientKeySalt == "" {
		return errors.New("CLIENT_KEY_SALT required")
	}

	return nil
}

// loadDotenv reads KEY=value pairs without overriding variables already set
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
