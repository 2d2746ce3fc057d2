// Package config loads the service configuration and the table definitions.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"goDT/internal/paginate"
	"goDT/internal/query"
)

// EnvPrefix prefixes the environment overrides: GODT_DATABASE_DSN sets
// database.dsn.
const EnvPrefix = "GODT"

// Config is the service configuration. It is validated once by Load and
// read-only afterwards.
type Config struct {
	Server          ServerConfig   `mapstructure:"server"`
	Database        DatabaseConfig `mapstructure:"database"`
	Paginator       string         `mapstructure:"paginator"`
	PageSize        int64          `mapstructure:"page_size"`
	CompositeSearch bool           `mapstructure:"composite_search"`
	Logging         LoggingConfig  `mapstructure:"logging"`
	TablesFile      string         `mapstructure:"tables_file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	// Engine is one of oracle, postgres, mysql, sqlite (or an alias).
	Engine string `mapstructure:"engine"`
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("paginator", paginate.StrategySimple)
	v.SetDefault("page_size", 10)
	v.SetDefault("composite_search", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("tables_file", "")
}

// Load reads the YAML file at path (optional; empty skips it), applies
// GODT_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := query.ParseDialect(c.Database.Engine); err != nil {
		errs = append(errs, fmt.Errorf("database.engine: %w", err))
	}
	if _, err := paginate.ByName(c.Paginator, c.PageSize); err != nil {
		errs = append(errs, fmt.Errorf("paginator: %w", err))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size: must be positive, got %d", c.PageSize))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: want console or json, got %q", c.Logging.Format))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Dialect returns the parsed database engine. Valid after Validate.
func (c *Config) Dialect() query.Dialect {
	d, _ := query.ParseDialect(c.Database.Engine)
	return d
}
