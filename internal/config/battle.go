package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable overriding the config path.
const EnvPath = "SKIRMISH_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/battle.yaml"

// Simulation controls a batch of AI-vs-AI battles.
type Simulation struct {
	Encounter   string        `yaml:"encounter"`   // encounter ID from the catalog
	Battles     int           `yaml:"battles"`     // how many independent battles
	Concurrency int           `yaml:"concurrency"` // battles running at once
	Timeout     time.Duration `yaml:"timeout"`     // per battle, 0 = none
}

// AI tunes the computer-controlled sides.
type AI struct {
	// ItemHPPercent is the ally HP percentage at or below which the AI uses
	// a healing item from its side's stock. 0 = never.
	ItemHPPercent int32 `yaml:"item_hp_percent"`
}

// Battle holds all configuration for the battle simulator.
type Battle struct {
	LogLevel string `yaml:"log_level"`

	// Seed for target picks. 0 picks a random seed per battle.
	Seed uint64 `yaml:"seed"`

	// Rules
	MaxTurns          int `yaml:"max_turns"`           // draw after this many turns, 0 = unlimited
	MaxPromptAttempts int `yaml:"max_prompt_attempts"` // rejected decisions before a turn is skipped

	AI         AI            `yaml:"ai"`
	Catalog    CatalogConfig `yaml:"catalog"`
	Simulation Simulation    `yaml:"simulation"`
}

// DefaultBattle returns Battle config with sensible defaults.
func DefaultBattle() Battle {
	return Battle{
		LogLevel:          "info",
		MaxTurns:          200,
		MaxPromptAttempts: 3,
		AI: AI{
			ItemHPPercent: 35,
		},
		Catalog: CatalogConfig{
			Source:   SourceFile,
			Path:     "config/catalog.yaml",
			Database: DefaultDatabase(),
		},
		Simulation: Simulation{
			Encounter:   "meadow",
			Battles:     1,
			Concurrency: 4,
			Timeout:     30 * time.Second,
		},
	}
}

// Path returns the config path from the environment or the default.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadBattle loads battle config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadBattle(path string) (Battle, error) {
	cfg := DefaultBattle()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid setting.
func (b Battle) Validate() error {
	var errs []error
	if b.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("max_turns must be >= 0, got %d", b.MaxTurns))
	}
	if b.MaxPromptAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_prompt_attempts must be >= 1, got %d", b.MaxPromptAttempts))
	}
	if b.AI.ItemHPPercent < 0 || b.AI.ItemHPPercent > 100 {
		errs = append(errs, fmt.Errorf("ai.item_hp_percent must be in [0, 100], got %d", b.AI.ItemHPPercent))
	}
	switch b.Catalog.Source {
	case SourceFile:
		if b.Catalog.Path == "" {
			errs = append(errs, errors.New("catalog.path is required for the file source"))
		}
	case SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", b.Catalog.Source))
	}
	if b.Simulation.Battles < 1 {
		errs = append(errs, fmt.Errorf("simulation.battles must be >= 1, got %d", b.Simulation.Battles))
	}
	if b.Simulation.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("simulation.concurrency must be >= 1, got %d", b.Simulation.Concurrency))
	}
	if b.Simulation.Encounter == "" {
		errs = append(errs, errors.New("simulation.encounter is required"))
	}
	return errors.Join(errs...)
}
