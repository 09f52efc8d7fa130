package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// Config is the full application configuration, matching
// config/config.yaml.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Settlement SettlementConfig `mapstructure:"settlement"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

// DatabaseConfig configures the Postgres connection and pool.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SettlementConfig configures the month-end settlement run. When
// AutoGenerate is set, Cron schedules a run for the previous calendar
// month; the HTTP trigger works either way.
type SettlementConfig struct {
	AutoGenerate bool   `mapstructure:"auto_generate"`
	Cron         string `mapstructure:"cron"`
}

// LoadConfig reads config/config.yaml, with .env values (if present)
// overriding sensitive fields.
func LoadConfig() (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv applies environment overrides (priority env > yaml).
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
}

// GORMConfig returns the gorm configuration for this database setup.
func (d *DatabaseConfig) GORMConfig() gorm.Config {
	return gorm.Config{} // extensible: logger, naming strategy
}
