// Package config loads the bot configuration from defaults, an optional TOML
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

type Config struct {
	DiscordToken string `toml:"discord_token" env:"DISCORD_TOKEN"`
	Prefix       string `toml:"prefix" env:"COMMAND_PREFIX"`
	AdminRoleID  string `toml:"admin_role" env:"ADMIN_ROLE_ID"`
	ModRoleID    string `toml:"mod_role" env:"MOD_ROLE_ID"`

	CommandTimeout   time.Duration `toml:"command_timeout" env:"COMMAND_TIMEOUT"`
	SuggestDistance  int           `toml:"suggest_distance" env:"SUGGEST_DISTANCE"`
	DisabledCommands []string      `toml:"disabled_commands" env:"DISABLED_COMMANDS" envSeparator:","`

	Storage Storage `toml:"storage" envPrefix:"STORAGE_"`
	XP      XP      `toml:"xp" envPrefix:"XP_"`
	Log     Log     `toml:"log" envPrefix:"LOG_"`
	HTTP    HTTP    `toml:"http" envPrefix:"HTTP_"`
}

type Storage struct {
	Driver     string `toml:"driver" env:"DRIVER"`
	Path       string `toml:"path" env:"PATH"`
	SQLitePath string `toml:"sqlite_path" env:"SQLITE_PATH"`
}

type XP struct {
	PerMessage      int64         `toml:"per_message" env:"PER_MESSAGE"`
	Cooldown        time.Duration `toml:"cooldown" env:"COOLDOWN"`
	LeaderboardSize int           `toml:"leaderboard_size" env:"LEADERBOARD_SIZE"`
}

type Log struct {
	Level      string `toml:"level" env:"LEVEL"`
	File       string `toml:"file" env:"FILE"`
	MaxSizeMB  int    `toml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `toml:"max_backups" env:"MAX_BACKUPS"`
	JSON       bool   `toml:"json" env:"JSON"`
}

type HTTP struct {
	// Addr is the listen address of the status server. Empty disables it.
	Addr string `toml:"addr" env:"ADDR"`
}

// Default returns the configuration used for anything left unset.
func Default() Config {
	return Config{
		Prefix:          "!",
		CommandTimeout:  15 * time.Second,
		SuggestDistance: 3,
		Storage: Storage{
			Driver:     DriverJSON,
			Path:       "datastore.json",
			SQLitePath: "trollbot.db",
		},
		XP: XP{
			PerMessage:      15,
			Cooldown:        time.Minute,
			LeaderboardSize: 10,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

var ErrNoToken = errors.New("DISCORD_TOKEN is not set")

// Load builds and validates the configuration. path names an optional TOML
// file; a .env in the working directory is loaded if present.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for tools that need only part of the
// configuration.
func Read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	md, err := toml.NewDecoder(f).Decode(cfg)
	if err != nil {
		return fmt.Errorf("couldn't decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.DiscordToken == "":
		return ErrNoToken
	case strings.TrimSpace(c.Prefix) == "":
		return errors.New("command prefix cannot be empty")
	case c.Storage.Driver != DriverJSON && c.Storage.Driver != DriverSQLite:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	case c.XP.LeaderboardSize <= 0:
		return fmt.Errorf("leaderboard size must be positive, got %d", c.XP.LeaderboardSize)
	case c.XP.PerMessage < 0:
		return fmt.Errorf("xp per message cannot be negative, got %d", c.XP.PerMessage)
	case c.CommandTimeout < 0:
		return fmt.Errorf("command timeout cannot be negative, got %v", c.CommandTimeout)
	}
	return nil
}

// Disabled reports whether the named command is turned off.
func (c *Config) Disabled(name string) bool {
	for _, d := range c.DisabledCommands {
		if strings.EqualFold(strings.TrimSpace(d), name) {
			return true
		}
	}
	return false
}
