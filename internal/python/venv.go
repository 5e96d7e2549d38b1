// venv.go implements virtual environment provisioning and inspection.
package python

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// CommandFunc executes a command and returns its combined output.
// Injected in tests; the default shells out via os/exec.
type CommandFunc func(ctx context.Context, name string, args ...string) (string, error)

// Venv represents a virtual environment directory, existing or not.
//
// All interaction with the environment goes through its own interpreter
// path (Python()) — the environment is never "activated". This keeps
// every bootstrap step explicit about which interpreter it runs.
type Venv struct {
	// Dir is the absolute path of the environment directory.
	Dir string

	run CommandFunc
}

// NewVenv creates a Venv handle for the given directory.
func NewVenv(dir string) *Venv {
	return &Venv{Dir: dir, run: runCommand}
}

// NewVenvWithRunner creates a Venv with an injected command runner.
func NewVenvWithRunner(dir string, run CommandFunc) *Venv {
	return &Venv{Dir: dir, run: run}
}

// Python returns the path of the environment's own interpreter:
// <dir>/bin/python on Unix, <dir>\Scripts\python.exe on Windows.
// The path is meaningful whether or not the environment exists yet.
func (v *Venv) Python() string {
	if isWindows() {
		return filepath.Join(v.Dir, "Scripts", "python.exe")
	}
	return filepath.Join(v.Dir, "bin", "python")
}

// Exists reports whether the directory holds a virtual environment.
// The pyvenv.cfg marker file is what the venv module itself writes and
// checks, so it distinguishes a real environment from an unrelated
// directory that happens to share the name.
func (v *Venv) Exists() bool {
	info, err := os.Stat(filepath.Join(v.Dir, "pyvenv.cfg"))
	return err == nil && !info.IsDir()
}

// Create provisions the environment with the given interpreter by
// running "<python> -m venv <dir>".
//
// The operation is idempotent: the venv module re-provisions an
// existing environment in place without error, so re-running setup on a
// bootstrapped checkout does not fail here.
func (v *Venv) Create(ctx context.Context, interp *Interpreter) error {
	name, args := interp.Command("-m", "venv", v.Dir)

	out, err := v.run(ctx, name, args...)
	if err != nil {
		msg := fmt.Sprintf("failed to create virtual environment at %s", v.Dir)
		if trimmed := strings.TrimSpace(out); trimmed != "" {
			msg = fmt.Sprintf("%s: %s", msg, trimmed)
		}
		return model.WrapCLIError(model.ExitVenvError, msg, err)
	}

	return nil
}

// Remove deletes the environment directory.
//
// As a guard against configuration mistakes, Remove refuses to delete a
// directory that exists but is not a virtual environment (no pyvenv.cfg).
// A directory that is already gone is not an error.
func (v *Venv) Remove() error {
	if _, err := os.Stat(v.Dir); os.IsNotExist(err) {
		return nil
	}

	if !v.Exists() {
		return model.NewCLIError(model.ExitVenvError,
			fmt.Sprintf("refusing to remove %s: not a virtual environment (no pyvenv.cfg)", v.Dir))
	}

	if err := os.RemoveAll(v.Dir); err != nil {
		return model.WrapCLIError(model.ExitVenvError,
			fmt.Sprintf("failed to remove virtual environment at %s", v.Dir), err)
	}
	return nil
}

// runCommand is the default CommandFunc.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// isWindows reports whether the binary targets Windows. Wrapped so the
// candidate tables and venv layout share one check.
func isWindows() bool {
	return runtime.GOOS == "windows"
}
