// Package config provides Viper-based configuration loading for the battle engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Battle engine operating modes.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// BattleConfig holds engine-wide battle settings.
type BattleConfig struct {
	// Mode is "development" (scheduling misuse panics) or "production"
	// (scheduling misuse is logged and ignored).
	Mode string `mapstructure:"mode"`
	// WatchdogTimeout is how long the engine waits for a presentation
	// completion signal before force-advancing. 0 disables the watchdog.
	WatchdogTimeout time.Duration `mapstructure:"watchdog_timeout"`
	// RewardOptions is the base number of reward options offered after a victory.
	RewardOptions int `mapstructure:"reward_options"`
	// LuxuryInterval is the wave period on which the luxury tier is offered wholesale.
	LuxuryInterval int `mapstructure:"luxury_interval"`
	// MaxPartySize is the roster cap; captures beyond it prompt a release.
	MaxPartySize int `mapstructure:"max_party_size"`
	// MaxWaves stops the encounter loop after this many waves. 0 = unlimited.
	MaxWaves int `mapstructure:"max_waves"`
	// Seed seeds the RNG stream. 0 selects a crypto-random source.
	Seed uint64 `mapstructure:"seed"`
	// StartingLevel is the level of the first wild encounter.
	StartingLevel int `mapstructure:"starting_level"`
}

// Strict reports whether scheduling misuse must panic.
func (b BattleConfig) Strict() bool {
	return b.Mode == ModeDevelopment
}

// DataConfig locates the static content directory.
type DataConfig struct {
	// Dir holds species.yaml, moves.yaml, types.yaml and rewards.yaml.
	Dir string `mapstructure:"dir"`
}

// ScriptingConfig holds Lua scripting settings.
type ScriptingConfig struct {
	// Dir holds *.lua files loaded into the shared VM. Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps opcodes per hook call. 0 uses the package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Battle    BattleConfig    `mapstructure:"battle"`
	Data      DataConfig      `mapstructure:"data"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Data.Dir == "" {
		errs = append(errs, "data.dir must not be empty")
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.Mode != ModeDevelopment && b.Mode != ModeProduction {
		errs = append(errs, fmt.Sprintf("battle.mode must be one of [development, production], got %q", b.Mode))
	}
	if b.WatchdogTimeout < 0 {
		errs = append(errs, "battle.watchdog_timeout must not be negative")
	}
	if b.RewardOptions < 1 {
		errs = append(errs, fmt.Sprintf("battle.reward_options must be >= 1, got %d", b.RewardOptions))
	}
	if b.LuxuryInterval < 1 {
		errs = append(errs, fmt.Sprintf("battle.luxury_interval must be >= 1, got %d", b.LuxuryInterval))
	}
	if b.MaxPartySize < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_party_size must be >= 1, got %d", b.MaxPartySize))
	}
	if b.MaxWaves < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_waves must be >= 0, got %d", b.MaxWaves))
	}
	if b.StartingLevel < 1 || b.StartingLevel > 100 {
		errs = append(errs, fmt.Sprintf("battle.starting_level must be 1-100, got %d", b.StartingLevel))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and MONBATTLE_ environment
// overrides applied, but no config file attached.
//
// Postcondition: LoadFromViper(NewViper()) yields the default configuration.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MONBATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("battle.mode", ModeProduction)
	v.SetDefault("battle.watchdog_timeout", "10s")
	v.SetDefault("battle.reward_options", 3)
	v.SetDefault("battle.luxury_interval", 10)
	v.SetDefault("battle.max_party_size", 6)
	v.SetDefault("battle.max_waves", 0)
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.starting_level", 5)

	v.SetDefault("data.dir", "content")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "monbattle")
	v.SetDefault("database.password", "monbattle")
	v.SetDefault("database.name", "monbattle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
