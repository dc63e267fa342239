package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cespare/prune/internal/models"
	"github.com/cespare/prune/internal/store"
)

func testdata(name string) string {
	return "../instance/testdata/" + name
}

// execute runs the prune command with args and returns its stdout, its
// stderr and the exit code it would have.
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), GetExitCode(err)
}

func TestInspectGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range []struct {
		kind string
		file string
	}{
		{"qap", "qap4.txt"},
		{"tsp", "tsp5.txt"},
		{"jobshop", "ft3.txt"},
		{"rcpsp", "rcpsp6.rcp"},
		{"maxsat", "maxsat6.cnf"},
	} {
		t.Run(tt.kind, func(t *testing.T) {
			out, _, code := execute(t, "inspect", "--kind", tt.kind, testdata(tt.file))
			require.Equal(t, ExitSuccess, code)
			g.Assert(t, "inspect_"+tt.kind, []byte(out))
		})
	}
}

func TestInspectJSON(t *testing.T) {
	out, _, code := execute(t, "--format", "json", "inspect", "--kind", "tsp", testdata("tsp5.txt"))
	require.Equal(t, ExitSuccess, code)
	var resp struct {
		Status string
		Data   Summary
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, Stat{"cities", 5}, resp.Data.Stats[0])
}

func TestCommandErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		args []string
		want int
	}{
		{"bad format", []string{"--format", "xml", "inspect", "--kind", "tsp", testdata("tsp5.txt")}, ExitCommandError},
		{"bad kind", []string{"inspect", "--kind", "vrp", testdata("tsp5.txt")}, ExitCommandError},
		{"missing kind", []string{"inspect", testdata("tsp5.txt")}, ExitCommandError},
		{"missing file", []string{"solve", "--kind", "tsp", "nonexistent.txt"}, ExitCommandError},
		{"wrong format", []string{"solve", "--kind", "qap", testdata("rcpsp6.rcp")}, ExitCommandError},
		{"bad branching", []string{"solve", "--kind", "tsp", "--branching", "random", testdata("tsp5.txt")}, ExitCommandError},
		{"resume without db", []string{"solve", "--kind", "tsp", "--resume", testdata("tsp5.txt")}, ExitCommandError},
		{"history without db", []string{"history"}, ExitCommandError},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, _, code := execute(t, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func solveJSON(t *testing.T, args ...string) models.Result {
	t.Helper()
	out, stderr, code := execute(t, append([]string{"--format", "json", "solve"}, args...)...)
	require.Equal(t, ExitSuccess, code, "stderr: %s", stderr)
	var resp struct {
		Status string
		Data   models.Result
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestSolve(t *testing.T) {
	res := solveJSON(t, "--kind", "rcpsp", testdata("rcpsp6.rcp"))
	assert.True(t, res.Found)
	assert.True(t, res.Optimal)
	assert.Equal(t, 6, res.Objective)

	out, _, code := execute(t, "solve", "--kind", "rcpsp", testdata("rcpsp6.rcp"))
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "rcpsp: objective 6 (optimal)\n"), out)
}

func TestSolveFlagsOverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, writeFile(cfgPath, "limits:\n  solutions: 1\n"))

	res := solveJSON(t, "--kind", "jobshop", "--config", cfgPath, testdata("ft3.txt"))
	assert.Equal(t, 1, res.Stats.Solutions)
	assert.False(t, res.Optimal)

	res = solveJSON(t, "--kind", "jobshop", "--config", cfgPath, "--solutions", "0", testdata("ft3.txt"))
	assert.True(t, res.Optimal)
}

func TestSolveVerboseLogs(t *testing.T) {
	_, stderr, code := execute(t, "-v", "solve", "--kind", "tsp", testdata("tsp5.txt"))
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "solve finished")
}

func TestHistoryAndResume(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	file := testdata("tsp5.txt")

	first := solveJSON(t, "--db", db, "--kind", "tsp", file)
	require.True(t, first.Found)
	second := solveJSON(t, "--db", db, "--kind", "tsp", "--resume", file)
	require.True(t, second.Found)
	assert.Equal(t, first.Objective, second.Objective)
	// The stored optimum is replayed and nothing improves on it.
	assert.Len(t, second.Trace, 1)

	out, _, code := execute(t, "--format", "json", "--db", db, "history", "--kind", "tsp", file)
	require.Equal(t, ExitSuccess, code)
	var resp struct {
		Data []store.Run
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	for _, r := range resp.Data {
		assert.True(t, r.Finished)
		assert.Equal(t, first.Objective, r.Objective)
	}

	out, _, code = execute(t, "--db", db, "history", "--run", resp.Data[1].ID)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, len(first.Trace), strings.Count(out, "objective"))

	out, _, code = execute(t, "--db", db, "history")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 2, strings.Count(out, file))
}

func TestExitError(t *testing.T) {
	inner := NewExitError(ExitFailure, "no solution")
	err := WrapExitError(ExitCommandError, "outer", inner)
	assert.Equal(t, "outer: no solution", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
