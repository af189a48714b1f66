// Package config loads the application's YAML configuration (rule file,
// region files, engine settings, webhook transport targets; aircraft lists
// live in the rule-set file) the way the original
// tool split config.py/private.yaml: a base file plus environment-variable
// overrides, here folded into one spf13/viper load.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration, spec.md §6's
// "application-level configuration" surface.
type Config struct {
	// RulesFile is the path to the YAML rule document lib/rules.LoadFile
	// reads.
	RulesFile string `mapstructure:"rules_file"`

	// RegionFiles are loaded in order by lib/region.Load; their index is
	// the stable region-file index flights size their region vectors to.
	RegionFiles []string `mapstructure:"region_files"`

	// Timezone is the IANA zone name min_time/max_time conditions are
	// evaluated against (spec.md §9 Open Question 2).
	Timezone string `mapstructure:"timezone"`

	// ExpirySeconds is the idle window after which a flight with no new
	// reports is evicted.
	ExpirySeconds float64 `mapstructure:"expiry_seconds"`

	// SpatialGrid enables the latlongring bucketing optimization.
	SpatialGrid     bool    `mapstructure:"spatial_grid"`
	SpatialGridSize float64 `mapstructure:"spatial_grid_size_deg"`

	// ShellActionsEnabled gates shell: actions, disabled by default.
	ShellActionsEnabled bool `mapstructure:"shell_actions_enabled"`

	// Webhooks maps a transport kind ("nats", "amqp", "redis", "discord")
	// to its connection string/token.
	Webhooks map[string]string `mapstructure:"webhooks"`
}

// defaults mirrors the original's config.py module-level defaults.
func defaults(v *viper.Viper) {
	v.SetDefault("timezone", "UTC")
	v.SetDefault("expiry_seconds", 3600)
	v.SetDefault("spatial_grid", true)
	v.SetDefault("spatial_grid_size_deg", 1.0)
	v.SetDefault("shell_actions_enabled", false)
}

// Load reads path (if non-empty) as the base config, then overlays
// ADSB_-prefixed environment variables, mirroring the original's
// config.yaml + private.yaml split without a second file: secrets go in
// the environment instead of a second YAML file.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("ADSB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
