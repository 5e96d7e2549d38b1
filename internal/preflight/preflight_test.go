package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
)

// TestRunEvaluatesAllChecks verifies every probe runs even after a
// failure — doctor output must show the full picture in one pass.
func TestRunEvaluatesAllChecks(t *testing.T) {
	probed := make([]string, 0, 3)
	checks := []Check{
		{Name: "a", Probe: func(ctx context.Context) (bool, string) {
			probed = append(probed, "a")
			return true, "fine"
		}},
		{Name: "b", Probe: func(ctx context.Context) (bool, string) {
			probed = append(probed, "b")
			return false, "broken"
		}},
		{Name: "c", Optional: true, Probe: func(ctx context.Context) (bool, string) {
			probed = append(probed, "c")
			return false, "also broken"
		}},
	}

	statuses := Run(context.Background(), checks)

	assert.Equal(t, []string{"a", "b", "c"}, probed)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Available)
	assert.False(t, statuses[1].Available)
	assert.Equal(t, "broken", statuses[1].Detail)
	assert.True(t, statuses[2].Optional)
}

// TestRequiredFailed verifies optional failures never fail the run
// while required failures always do.
func TestRequiredFailed(t *testing.T) {
	assert.False(t, RequiredFailed([]Status{
		{Name: "a", Available: true},
		{Name: "b", Optional: true, Available: false},
	}))

	assert.True(t, RequiredFailed([]Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false},
	}))

	assert.False(t, RequiredFailed(nil))
}

// TestChecksShape verifies the built-in check set: the interpreter gate
// and manifest are always required, and the Docker check toggles
// between informational and required with container mode.
func TestChecksShape(t *testing.T) {
	cfg := config.Default()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("gradio\n"), 0644))

	byName := func(checks []Check) map[string]Check {
		m := make(map[string]Check, len(checks))
		for _, c := range checks {
			m[c.Name] = c
		}
		return m
	}

	checks := byName(Checks(root, cfg, false))
	require.Contains(t, checks, "python 3.12")
	assert.False(t, checks["python 3.12"].Optional)
	assert.False(t, checks["requirements manifest"].Optional)
	assert.True(t, checks["submodules"].Optional)
	assert.True(t, checks["docker daemon"].Optional)

	checks = byName(Checks(root, cfg, true))
	assert.False(t, checks["docker daemon"].Optional)
}

// TestManifestCheckProbe exercises the manifest probe against a present
// and a missing manifest, without touching interpreters or Docker.
func TestManifestCheckProbe(t *testing.T) {
	cfg := config.Default()
	ctx := context.Background()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("gradio\nmugen\n"), 0644))

	probe := findCheck(t, Checks(root, cfg, false), "requirements manifest").Probe
	ok, detail := probe(ctx)
	assert.True(t, ok)
	assert.Contains(t, detail, "2 package(s)")

	probe = findCheck(t, Checks(t.TempDir(), cfg, false), "requirements manifest").Probe
	ok, _ = probe(ctx)
	assert.False(t, ok)
}

// findCheck returns the named check or fails the test.
func findCheck(t *testing.T, checks []Check, name string) Check {
	t.Helper()

	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}
