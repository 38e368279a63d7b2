// Package config loads site profiles: every lookup table, weight and
// threshold the engine consults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/linebuild/internal/complexity"
	"github.com/roach88/linebuild/internal/continuity"
	"github.com/roach88/linebuild/internal/duration"
	"github.com/roach88/linebuild/internal/migrate"
	"github.com/roach88/linebuild/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. LINEBUILD_MIGRATION_CONCURRENCY.
const EnvPrefix = "LINEBUILD"

// Profile is the complete configuration of one kitchen site.
type Profile struct {
	Durations  duration.Tables          `json:"durations" mapstructure:"durations"`
	Transfers  continuity.TransferTable `json:"transfers" mapstructure:"transfers"`
	Pods       continuity.PodMap        `json:"pods" mapstructure:"pods"`
	Complexity complexity.Config        `json:"complexity" mapstructure:"complexity"`
	Aliases    migrate.Aliases          `json:"aliases" mapstructure:"aliases"`
	Migration  Migration                `json:"migration" mapstructure:"migration"`
}

// Migration holds batch migration defaults.
type Migration struct {
	Tier        model.Tier `json:"tier" mapstructure:"tier"`
	Concurrency int        `json:"concurrency" mapstructure:"concurrency"`
}

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		Durations:  duration.DefaultTables(),
		Transfers:  continuity.DefaultTransferTable(),
		Pods:       continuity.PodMap{},
		Complexity: complexity.DefaultConfig(),
		Aliases:    migrate.DefaultAliases(),
		Migration: Migration{
			Tier:        model.TierHigh,
			Concurrency: migrate.DefaultConcurrency,
		},
	}
}

// Load reads a YAML, JSON or TOML profile and overlays it onto Default.
// Map entries in the file replace the default entry with the same key;
// absent entries keep their default. An empty path returns the defaults
// with environment overrides applied.
//
// Keys are case-insensitive: viper lowercases them, and pod lookups
// lowercase the station id to match.
func Load(path string) (Profile, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	p := Default()
	v.SetDefault("migration.tier", string(p.Migration.Tier))
	v.SetDefault("migration.concurrency", p.Migration.Concurrency)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	p.Pods = continuity.NewPodMap(p.Pods)
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks values that would make the engine misbehave.
func (p Profile) Validate() error {
	var errs []error
	tier, ok := model.ParseTier(string(p.Migration.Tier))
	if !ok {
		errs = append(errs, fmt.Errorf("migration.tier: unknown tier %q", p.Migration.Tier))
	} else if tier != p.Migration.Tier {
		errs = append(errs, fmt.Errorf("migration.tier: must be lowercase, got %q", p.Migration.Tier))
	}
	if p.Migration.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("migration.concurrency: must be at least 1, got %d", p.Migration.Concurrency))
	}
	for kind, cost := range p.Transfers {
		if cost.Seconds < 0 || cost.Weight < 0 {
			errs = append(errs, fmt.Errorf("transfers.%s: costs must not be negative", kind))
		}
	}
	if _, ok := p.Aliases.TimeUnits[p.Aliases.DefaultTimeUnit]; !ok && p.Aliases.DefaultTimeUnit != "" {
		errs = append(errs, fmt.Errorf("aliases.default_time_unit: %q is not a known time unit", p.Aliases.DefaultTimeUnit))
	}
	return errors.Join(errs...)
}
