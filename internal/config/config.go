package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "ARENA_CONFIG"

// DefaultPath is used when PathEnv is unset.
const DefaultPath = "config/arena.yaml"

var (
	ErrInvalidFirstCommitter = errors.New("first committer must be 0 or 1")
	ErrInvalidCritMultiplier = errors.New("crit multiplier needs a positive numerator and denominator")
	ErrInvalidFormat         = errors.New("format must be singles or doubles")
	ErrInvalidTeamSize       = errors.New("team size out of range")
	ErrInvalidWorkers        = errors.New("worker count must be positive")
)

// Arena holds all configuration for the arena binaries.
type Arena struct {
	LogLevel string `yaml:"log_level" env:"ARENA_LOG_LEVEL"`

	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"ARENA_DB_"`
	Persist  bool           `yaml:"persist" env:"ARENA_PERSIST"` // journal battles to Postgres

	// Engine
	Battle BattleConfig `yaml:"battle" envPrefix:"ARENA_BATTLE_"`

	// Content
	RosterPath string `yaml:"roster_path" env:"ARENA_ROSTER_PATH"`

	// Binaries
	Simulation SimulationConfig `yaml:"simulation" envPrefix:"ARENA_SIM_"`
	Replay     ReplayConfig     `yaml:"replay" envPrefix:"ARENA_REPLAY_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// BattleConfig tunes the battle engine.
type BattleConfig struct {
	TurnTimeout     time.Duration `yaml:"turn_timeout" env:"TURN_TIMEOUT"` // 0 disables forfeits
	Ruleset         string        `yaml:"ruleset" env:"RULESET"`
	Format          string        `yaml:"format" env:"FORMAT"` // singles | doubles
	TeamSize        int           `yaml:"team_size" env:"TEAM_SIZE"`
	FirstCommitter  int           `yaml:"first_committer" env:"FIRST_COMMITTER"`
	CritNumerator   uint32        `yaml:"crit_numerator" env:"CRIT_NUMERATOR"` // crit damage multiplier num/den
	CritDenominator uint32        `yaml:"crit_denominator" env:"CRIT_DENOMINATOR"`
}

// SimulationConfig drives cmd/arenasim.
type SimulationConfig struct {
	Battles     int    `yaml:"battles" env:"BATTLES"`
	Concurrency int    `yaml:"concurrency" env:"CONCURRENCY"`
	MaxTurns    int    `yaml:"max_turns" env:"MAX_TURNS"`
	Seed        uint64 `yaml:"seed" env:"SEED"`
}

// ReplayConfig drives cmd/arenareplay.
type ReplayConfig struct {
	Workers int `yaml:"workers" env:"WORKERS"`
	Limit   int `yaml:"limit" env:"LIMIT"` // most recent finished battles to verify
}

// DefaultArena returns Arena config with sensible defaults.
func DefaultArena() Arena {
	return Arena{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "monarena",
			Password: "monarena",
			DBName:   "monarena",
			SSLMode:  "disable",
		},
		Battle: BattleConfig{
			TurnTimeout:     2 * time.Minute,
			Ruleset:         "standard",
			Format:          "singles",
			TeamSize:        3,
			FirstCommitter:  0,
			CritNumerator:   3,
			CritDenominator: 2,
		},
		RosterPath: "config/roster.yaml",
		Simulation: SimulationConfig{
			Battles:     16,
			Concurrency: 4,
			MaxTurns:    200,
			Seed:        1,
		},
		Replay: ReplayConfig{
			Workers: 4,
			Limit:   100,
		},
	}
}

// LoadArena loads config from a YAML file, then applies ARENA_* environment
// overrides. If the file doesn't exist, defaults are used.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Path returns the config path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Validate checks values the engine cannot work with.
func (a Arena) Validate() error {
	b := a.Battle
	if b.FirstCommitter != 0 && b.FirstCommitter != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidFirstCommitter, b.FirstCommitter)
	}
	if b.CritNumerator == 0 || b.CritDenominator == 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidCritMultiplier, b.CritNumerator, b.CritDenominator)
	}
	if b.Format != "singles" && b.Format != "doubles" {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, b.Format)
	}
	if b.TeamSize < 1 || b.TeamSize > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidTeamSize, b.TeamSize)
	}
	if a.Simulation.Concurrency < 1 || a.Replay.Workers < 1 {
		return fmt.Errorf("%w: simulation %d, replay %d", ErrInvalidWorkers, a.Simulation.Concurrency, a.Replay.Workers)
	}
	return nil
}
