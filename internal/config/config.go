package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"

	"bikeshare-dashboard/pkg/database"
)

const (
	configEnv  = "BIKESHARE"
	configFile = "config.yaml"

	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	Server struct {
		Host         string        `fig:"host" default:"0.0.0.0"`
		Port         int           `fig:"port" default:"8080"`
		ReadTimeout  time.Duration `fig:"read_timeout" default:"15s"`
		WriteTimeout time.Duration `fig:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `fig:"idle_timeout" default:"60s"`
	} `fig:"server"`

	Dataset struct {
		// Allowed values: csv, postgres
		Source string `fig:"source" default:"csv"`
		Path   string `fig:"path" default:"main_data.csv"`

		// The file is watched for changes unless disabled
		DisableWatch bool `fig:"disable_watch"`

		// Rows with an unparseable date fail the load instead of being dropped
		RejectInvalidDates bool `fig:"reject_invalid_dates"`
	} `fig:"dataset"`

	Database struct {
		Host            string        `fig:"host" default:"localhost"`
		Port            int           `fig:"port" default:"5432"`
		User            string        `fig:"user" default:"bikeshare"`
		Password        string        `fig:"password"`
		Database        string        `fig:"database" default:"bikeshare"`
		SSLMode         string        `fig:"sslmode" default:"disable"`
		MaxOpenConns    int           `fig:"max_open_conns" default:"10"`
		MaxIdleConns    int           `fig:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `fig:"conn_max_lifetime" default:"30m"`
		ConnMaxIdleTime time.Duration `fig:"conn_max_idle_time" default:"5m"`
	} `fig:"database"`

	Logging struct {
		// Allowed values: debug, info, warn, error
		Level string `fig:"level" default:"info"`
	} `fig:"logging"`

	Charts struct {
		WidthInches  float64 `fig:"width_inches" default:"10"`
		HeightInches float64 `fig:"height_inches" default:"5"`
	} `fig:"charts"`
}

// LoadConfig reads config.yaml from the working directory if present and
// applies BIKESHARE_* environment overrides
func LoadConfig() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.File(configFile), fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}
	return conf, nil
}

// LoadConfigFromFile reads the named config file from dir
func LoadConfigFromFile(dir, file string) (*Config, error) {
	conf := new(Config)
	if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err := fig.Load(conf, fig.Dirs(dir), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}
	return conf, nil
}

// DatabaseConfig converts the database section for the connection pool
func (c *Config) DatabaseConfig() *database.Config {
	return &database.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset path is required for source %q", SourceCSV)
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("invalid dataset source: %s", c.Dataset.Source)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Charts.WidthInches <= 0 || c.Charts.HeightInches <= 0 {
		return fmt.Errorf("invalid chart size: %gx%g", c.Charts.WidthInches, c.Charts.HeightInches)
	}
	return nil
}
