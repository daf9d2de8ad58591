package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/proxygate/accounts/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// AdminRealm is the HTTP Basic realm shown on admin routes.
	AdminRealm string `env:"ADMIN_REALM, default=proxy-accounts"`

	Mongo    MongoConfig
	Password PasswordConfig
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=proxy_gateway"`
	Collection string        `env:"MONGO_COLLECTION, default=proxyusers"`
	Timeout    time.Duration `env:"MONGO_TIMEOUT,    default=10s"`
}

// PasswordConfig holds the two length thresholds. They are independent on
// purpose; see domain.PasswordPolicy.
type PasswordConfig struct {
	MinLength       int `env:"PASSWORD_MIN_LENGTH,        default=8"`
	RehashMinLength int `env:"PASSWORD_REHASH_MIN_LENGTH, default=6"`
}

// Policy converts the settings into a domain.PasswordPolicy.
func (p PasswordConfig) Policy() domain.PasswordPolicy {
	return domain.PasswordPolicy{
		MinPasswordLength: p.MinLength,
		RehashMinLength:   p.RehashMinLength,
	}
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l. Tests pass envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.Password.MinLength < 0 || cfg.Password.RehashMinLength < 0 {
		return nil, fmt.Errorf("password length thresholds must not be negative")
	}
	return &cfg, nil
}
