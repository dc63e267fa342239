package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "lns.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Limits.Time)
	assert.Equal(t, 100000, cfg.Limits.Failures)
	assert.Equal(t, 0, cfg.Limits.Solutions)
	assert.Equal(t, LNS{Restarts: 200, FailureLimit: 50, FragmentPercent: 20, Seed: 42}, cfg.LNS)
	assert.Equal(t, BranchingConflictOrdering, cfg.Branching)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_KeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("lns:\n  restarts: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.LNS.Restarts)
	assert.Equal(t, 100, cfg.LNS.FailureLimit)
	assert.Equal(t, 5, cfg.LNS.FragmentPercent)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "limit:\n  nodes: 3\n", "field limit not found"},
		{"negative nodes", "limits:\n  nodes: -3\n", "limits.nodes"},
		{"bad duration", "limits:\n  time: soon\n", "failed to parse YAML"},
		{"fragment", "lns:\n  fragment_percent: 101\n", "lns.fragment_percent"},
		{"restarts without limit", "lns:\n  restarts: 3\n  failure_limit: 0\n", "lns.failure_limit"},
		{"branching", "branching: random\n", `unknown branching "random"`},
		{"discrepancy", "max_discrepancy: -1\n", "max_discrepancy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
