// Package config holds the search settings of a solve run. They are read
// from a YAML file and may be overridden by command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Branching heuristics understood by the models.
const (
	BranchingDefault          = "default" // the model's own heuristic
	BranchingFirstFail        = "first-fail"
	BranchingConflictOrdering = "conflict-ordering"
	BranchingLastConflict     = "last-conflict"
)

var branchings = []string{
	BranchingDefault,
	BranchingFirstFail,
	BranchingConflictOrdering,
	BranchingLastConflict,
}

// Config is the search configuration.
type Config struct {
	Limits Limits `yaml:"limits"`
	LNS    LNS    `yaml:"lns"`
	// MaxDiscrepancy bounds the discrepancies of the search. Zero means no
	// bound.
	MaxDiscrepancy int    `yaml:"max_discrepancy"`
	Branching      string `yaml:"branching"`
}

// Limits stop a search. Zero values mean no limit.
type Limits struct {
	Solutions int           `yaml:"solutions"`
	Failures  int           `yaml:"failures"`
	Nodes     int           `yaml:"nodes"`
	Time      time.Duration `yaml:"time"`
}

// LNS configures large neighborhood search. It is off when Restarts is
// zero.
type LNS struct {
	Restarts int `yaml:"restarts"`
	// FailureLimit ends each restart after that many failures.
	FailureLimit int `yaml:"failure_limit"`
	// FragmentPercent is the chance, per variable, of being pinned to the
	// incumbent at a restart.
	FragmentPercent int   `yaml:"fragment_percent"`
	Seed            int64 `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LNS: LNS{
			FailureLimit:    100,
			FragmentPercent: 5,
		},
		Branching: BranchingDefault,
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Limits.Solutions < 0:
		return fmt.Errorf("limits.solutions must be >= 0, got %d", c.Limits.Solutions)
	case c.Limits.Failures < 0:
		return fmt.Errorf("limits.failures must be >= 0, got %d", c.Limits.Failures)
	case c.Limits.Nodes < 0:
		return fmt.Errorf("limits.nodes must be >= 0, got %d", c.Limits.Nodes)
	case c.Limits.Time < 0:
		return fmt.Errorf("limits.time must be >= 0, got %s", c.Limits.Time)
	case c.MaxDiscrepancy < 0:
		return fmt.Errorf("max_discrepancy must be >= 0, got %d", c.MaxDiscrepancy)
	case c.LNS.Restarts < 0:
		return fmt.Errorf("lns.restarts must be >= 0, got %d", c.LNS.Restarts)
	case c.LNS.Restarts > 0 && c.LNS.FailureLimit <= 0:
		return fmt.Errorf("lns.failure_limit must be > 0 when restarts are enabled")
	case c.LNS.FragmentPercent < 0 || c.LNS.FragmentPercent > 100:
		return fmt.Errorf("lns.fragment_percent must be in [0, 100], got %d", c.LNS.FragmentPercent)
	}
	for _, b := range branchings {
		if c.Branching == b {
			return nil
		}
	}
	return fmt.Errorf("unknown branching %q (want one of %v)", c.Branching, branchings)
}
