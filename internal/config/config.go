// Package config loads service settings from configs/config.yml and the
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FILM"

// Config holds all application configuration.
type Config struct {
	Port string     `mapstructure:"port"`
	Log  LogConfig  `mapstructure:"log"`
	DB   DBConfig   `mapstructure:"db"`
	Auth AuthConfig `mapstructure:"auth"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite | postgres
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// BootstrapSecret lets an operator mint admin accounts before any admin exists.
	BootstrapSecret string `mapstructure:"bootstrap_secret"`
}

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("auth.jwt_secret (or JWT_SECRET) must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3030")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.driver", "")
	v.SetDefault("db.dsn", "film.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.bootstrap_secret", "")
}

// bindLegacyEnv maps the plain variable names used by earlier deployments.
func bindLegacyEnv(v *viper.Viper) error {
	for key, env := range map[string]string{
		"port":            "PORT",
		"auth.jwt_secret": "JWT_SECRET",
		"db.dsn":          "DATABASE_URL",
	} {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

// Load reads config.yml from dir (a missing file is fine) and applies
// FILM_* environment overrides.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if dir != "" {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.DB.Driver) == "" {
		cfg.DB.Driver = driverFromDSN(cfg.DB.DSN)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// driverFromDSN picks postgres for a postgres URL and sqlite for anything else.
func driverFromDSN(dsn string) string {
	dsn = strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// String returns a representation of the config with secrets masked.
func (c *Config) String() string {
	bootstrap := "unset"
	if c.Auth.BootstrapSecret != "" {
		bootstrap = "***"
	}
	return fmt.Sprintf("Config{port: %s, log: %s/%s, db: %s, auth: secret=*** ttl=%s bootstrap=%s}",
		c.Port, c.Log.Level, c.Log.Format, c.DB.Driver, c.Auth.TokenTTL, bootstrap)
}
