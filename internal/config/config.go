// Package config loads famlife configuration from an optional config.yaml,
// FAMLIFE_* environment variables, and built-in defaults, in that order of
// increasing precedence for env over file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Database  DatabaseConfig        `mapstructure:"database"`
	IMAP      IMAPConfig            `mapstructure:"imap"`
	Telegram  TelegramConfig        `mapstructure:"telegram"`
	Household HouseholdConfig       `mapstructure:"household"`
	Users     map[string]UserConfig `mapstructure:"users"`
	Log       LogConfig             `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int    `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`   // "sqlite" or "postgres"
	DataDir string `mapstructure:"data_dir"` // sqlite only
	DSN     string `mapstructure:"dsn"`      // postgres only
}

type IMAPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Mailbox      string `mapstructure:"mailbox"`
	PollInterval int    `mapstructure:"poll_interval_minutes"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type HouseholdConfig struct {
	Primary        string   `mapstructure:"primary"`
	Partner        string   `mapstructure:"partner"`
	PartnerAliases []string `mapstructure:"partner_aliases"`
}

type UserConfig struct {
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".famlife"
	}
	return filepath.Join(home, ".famlife")
}

// Load reads configuration. path may be empty, in which case config.yaml is
// looked up in the working directory and the data dir; a missing file is not
// an error, the defaults and environment carry a usable config.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3456)
	v.SetDefault("server.session_secret", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.data_dir", defaultDataDir())
	v.SetDefault("imap.host", "imap.gmail.com")
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.mailbox", "INBOX")
	v.SetDefault("imap.poll_interval_minutes", 5)
	v.SetDefault("household.primary", "jesse")
	v.SetDefault("household.partner", "wife")
	v.SetDefault("household.partner_aliases", []string{"wife", "sarah", "jessica", "kate", "lisa", "marie", "ann"})
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("FAMLIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDataDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "postgres" && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required for the postgres driver")
	}

	return &cfg, nil
}
