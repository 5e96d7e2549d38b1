package python

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// fakeVenvDir creates a directory that looks like a provisioned
// virtual environment (carries the pyvenv.cfg marker).
func fakeVenvDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "venv")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0644))
	return dir
}

// TestVenvPython verifies the interpreter path follows the venv layout
// of the platform the test runs on.
func TestVenvPython(t *testing.T) {
	v := NewVenv(filepath.Join("checkout", "venv"))

	if runtime.GOOS == "windows" {
		assert.Equal(t, filepath.Join("checkout", "venv", "Scripts", "python.exe"), v.Python())
	} else {
		assert.Equal(t, filepath.Join("checkout", "venv", "bin", "python"), v.Python())
	}
}

// TestVenvExists verifies the pyvenv.cfg marker distinguishes a real
// environment from an unrelated directory or a missing one.
func TestVenvExists(t *testing.T) {
	assert.True(t, NewVenv(fakeVenvDir(t)).Exists())

	// Directory exists but is not a venv.
	plain := t.TempDir()
	assert.False(t, NewVenv(plain).Exists())

	// Directory does not exist at all.
	assert.False(t, NewVenv(filepath.Join(plain, "missing")).Exists())
}

// TestVenvCreate verifies the provisioning command line, including the
// launcher-selector form used on Windows.
func TestVenvCreate(t *testing.T) {
	var gotName string
	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		gotName = name
		gotArgs = args
		return "", nil
	}

	v := NewVenvWithRunner(filepath.Join("checkout", "venv"), run)
	interp := &Interpreter{Path: "python3.12", Version: "3.12.4"}
	require.NoError(t, v.Create(context.Background(), interp))
	assert.Equal(t, "python3.12", gotName)
	assert.Equal(t, []string{"-m", "venv", v.Dir}, gotArgs)

	launcher := &Interpreter{Path: "py", Args: []string{"-3.12"}, Version: "3.12.4"}
	require.NoError(t, v.Create(context.Background(), launcher))
	assert.Equal(t, "py", gotName)
	assert.Equal(t, []string{"-3.12", "-m", "venv", v.Dir}, gotArgs)
}

// TestVenvCreateFailure verifies a failing venv invocation surfaces the
// tool output and the venv-specific exit code.
func TestVenvCreateFailure(t *testing.T) {
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		return "Error: Command '['venv']' returned non-zero exit status 1.", assert.AnError
	}

	v := NewVenvWithRunner("venv", run)
	err := v.Create(context.Background(), &Interpreter{Path: "python3.12"})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitVenvError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "non-zero exit status")
}

// TestVenvRemove verifies removal deletes a real environment, treats a
// missing directory as a no-op, and refuses to delete a directory that
// is not an environment.
func TestVenvRemove(t *testing.T) {
	// Real environment: removed.
	dir := fakeVenvDir(t)
	v := NewVenv(dir)
	require.NoError(t, v.Remove())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Already gone: no-op.
	assert.NoError(t, v.Remove())

	// A plain directory with user files must not be wiped.
	plain := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(plain, "keep.txt"), []byte("data"), 0644))
	err = NewVenv(plain).Remove()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to remove")
	_, statErr := os.Stat(filepath.Join(plain, "keep.txt"))
	assert.NoError(t, statErr, "user files must survive a refused removal")
}
