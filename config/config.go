package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nstehr/bulwark/battlefield"
)

const (
	configName = "bulwark"
	envPrefix  = "BULWARK"

	minCapacity = 1
	maxCapacity = 10
)

// RulesConfig holds the rule-variant knobs of the board.
type RulesConfig struct {
	MeleeCapacity  int `mapstructure:"meleeCapacity"`
	RangedCapacity int `mapstructure:"rangedCapacity"`
}

// Capacities converts the rule settings for the battlefield.
func (r RulesConfig) Capacities() battlefield.Capacities {
	return battlefield.Capacities{Melee: r.MeleeCapacity, Ranged: r.RangedCapacity}
}

// Config is the full service configuration.
type Config struct {
	LogLevel    string      `mapstructure:"logLevel"`
	SocketPath  string      `mapstructure:"socketPath"`
	CatalogPath string      `mapstructure:"catalogPath"`
	Rules       RulesConfig `mapstructure:"rules"`
}

// Load reads bulwark.yaml from configDir if present, applies BULWARK_*
// environment overrides, and fills in defaults. A missing file is not an
// error; an unreadable one is.
func Load(configDir string) (Config, error) {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("socketPath", "/tmp/bulwark.sock")
	viper.SetDefault("catalogPath", "assets/cards.yaml")
	viper.SetDefault("rules.meleeCapacity", battlefield.DefaultCapacities.Melee)
	viper.SetDefault("rules.rangedCapacity", battlefield.DefaultCapacities.Ranged)

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.Rules.MeleeCapacity = clampInt(cfg.Rules.MeleeCapacity, minCapacity, maxCapacity)
	cfg.Rules.RangedCapacity = clampInt(cfg.Rules.RangedCapacity, minCapacity, maxCapacity)
	return cfg, nil
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
