// Package pip drives the package installer of a virtual environment.
//
// All invocations go through "<venv-python> -m pip ...", never through
// a bare "pip" on PATH: the interpreter path pins exactly which
// environment receives the packages, so no step depends on ambient
// activation state.
//
// pip's own console output is streamed through unmodified. The
// bootstrap adds no logging layer on top — failures surface as the
// tool's native output plus a classified error for the exit code.
package pip

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// Runner executes an installer command, streaming its output to the
// given writers. Injected in tests; the default shells out via os/exec.
type Runner func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

// Installer runs pip inside one specific virtual environment.
type Installer struct {
	// Python is the path of the environment's interpreter
	// (e.g. venv/bin/python). Every command is "<Python> -m pip ...".
	Python string

	// Stdout and Stderr receive pip's streamed output.
	Stdout io.Writer
	Stderr io.Writer

	run Runner
}

// NewInstaller creates an Installer for the given interpreter path,
// streaming pip output to the process's stdout and stderr.
func NewInstaller(python string) *Installer {
	return &Installer{
		Python: python,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		run:    runPip,
	}
}

// NewInstallerWithRunner creates an Installer with an injected runner.
func NewInstallerWithRunner(python string, run Runner, stdout, stderr io.Writer) *Installer {
	return &Installer{Python: python, Stdout: stdout, Stderr: stderr, run: run}
}

// UpgradeSelf upgrades pip itself to the latest version. This runs
// before any package install to avoid stale-resolver bugs in the
// pip version the venv module seeded.
func (i *Installer) UpgradeSelf(ctx context.Context) error {
	err := i.run(ctx, i.Python,
		[]string{"-m", "pip", "install", "--upgrade", "pip"},
		i.Stdout, i.Stderr)
	if err != nil {
		return model.WrapCLIError(model.ExitPipError, "failed to upgrade pip", err)
	}
	return nil
}

// InstallRequirements installs the manifest file into the environment
// via "pip install -r <manifest>".
//
// The manifest is handed to pip wholesale: every specifier it lists is
// installed, and nothing else. The file's existence is checked up front
// so a missing manifest produces an attributable message instead of a
// raw pip traceback.
func (i *Installer) InstallRequirements(ctx context.Context, manifestPath string) error {
	if _, err := os.Stat(manifestPath); err != nil {
		return model.WrapCLIError(model.ExitPipError,
			fmt.Sprintf("requirements manifest not found at %s", manifestPath), err)
	}

	err := i.run(ctx, i.Python,
		[]string{"-m", "pip", "install", "-r", manifestPath},
		i.Stdout, i.Stderr)
	if err != nil {
		return model.WrapCLIError(model.ExitPipError,
			fmt.Sprintf("failed to install requirements from %s", manifestPath), err)
	}
	return nil
}

// runPip is the default Runner. Output streams directly to the writers
// so long installs show live progress instead of buffering.
func runPip(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
