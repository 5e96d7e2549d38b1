// probe.go implements interpreter discovery and the exact-version gate.
package python

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// Interpreter is a resolved CPython interpreter that passed the gate.
type Interpreter struct {
	// Path is the command name or path used to invoke the interpreter.
	Path string

	// Args are fixed leading arguments, used for launcher-style
	// interpreters (e.g. the Windows py launcher: "py" with "-3.12").
	Args []string

	// Version is the full reported version, e.g. "3.12.4".
	Version string
}

// Command returns the argv to invoke the interpreter with the given
// extra arguments appended after any launcher selector.
func (i Interpreter) Command(extra ...string) (string, []string) {
	args := make([]string, 0, len(i.Args)+len(extra))
	args = append(args, i.Args...)
	args = append(args, extra...)
	return i.Path, args
}

// String renders the interpreter for logs and reports,
// e.g. "python3.12 (Python 3.12.4)".
func (i Interpreter) String() string {
	cmd := i.Path
	if len(i.Args) > 0 {
		cmd = cmd + " " + strings.Join(i.Args, " ")
	}
	return fmt.Sprintf("%s (Python %s)", cmd, i.Version)
}

// candidate is one probe target: a command plus launcher arguments.
type candidate struct {
	path string
	args []string
}

// candidatesFor returns the probe targets for a version spec, most
// specific first. A versioned command that resolves is always preferred
// over a bare "python" that happens to be the right version, because
// the versioned form is stable across PATH changes.
func candidatesFor(spec string, windows bool) []candidate {
	major, _, _ := strings.Cut(spec, ".")

	if windows {
		// The py launcher is the canonical multi-version dispatcher on
		// Windows; plain "python" is the PATH fallback.
		return []candidate{
			{path: "py", args: []string{"-" + spec}},
			{path: "python", args: nil},
		}
	}
	return []candidate{
		{path: "python" + spec, args: nil},
		{path: "python" + major, args: nil},
		{path: "python", args: nil},
	}
}

// VersionRunner executes an interpreter candidate with --version and
// returns its combined output. Injected in tests; the default shells
// out via os/exec.
type VersionRunner func(path string, args ...string) (string, error)

// Prober discovers interpreters matching an exact major.minor version.
type Prober struct {
	run VersionRunner

	// windows selects the candidate set. Split out from runtime.GOOS so
	// tests can exercise both candidate tables on any platform.
	windows bool
}

// NewProber creates a Prober that probes real interpreters on this host.
func NewProber() *Prober {
	return &Prober{run: runVersion, windows: isWindows()}
}

// NewProberWithRunner creates a Prober with an injected runner.
// Used by tests to simulate hosts with arbitrary interpreter sets.
func NewProberWithRunner(run VersionRunner, windows bool) *Prober {
	return &Prober{run: run, windows: windows}
}

// Find probes the candidate commands for the given major.minor spec and
// returns the first interpreter whose reported version matches exactly.
//
// A candidate that is missing, fails to run, or reports a different
// major.minor is skipped — "3.11" and "3.13" are both treated as not
// found when "3.12" is required. When no candidate matches, the
// returned error carries ExitPythonNotFound (exit status 1 by contract).
func (p *Prober) Find(spec string) (*Interpreter, error) {
	if err := model.ValidateVersionSpec(spec); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid interpreter version spec", err)
	}

	var tried []string
	for _, c := range candidatesFor(spec, p.windows) {
		probeArgs := append(append([]string{}, c.args...), "--version")
		out, err := p.run(c.path, probeArgs...)
		if err != nil {
			// Command missing or launcher refused the selector — try the
			// next candidate. The raw failure is not user-relevant here.
			tried = append(tried, c.path)
			continue
		}

		version, err := parseVersionOutput(out)
		if err != nil {
			tried = append(tried, c.path)
			continue
		}

		if majorMinor(version) != spec {
			tried = append(tried, fmt.Sprintf("%s=%s", c.path, version))
			continue
		}

		return &Interpreter{Path: c.path, Args: c.args, Version: version}, nil
	}

	return nil, model.WrapCLIError(
		model.ExitPythonNotFound,
		model.NotInstalledMessage(spec),
		fmt.Errorf("no matching interpreter among candidates: %s", strings.Join(tried, ", ")),
	)
}

// VerifyVersionOutput checks interpreter --version output against an
// exact major.minor spec and returns the full reported version. The
// sandbox bootstrap uses this to gate the interpreter inside a
// container, where Find's PATH probing does not apply.
func VerifyVersionOutput(out, spec string) (string, error) {
	version, err := parseVersionOutput(out)
	if err != nil {
		return "", err
	}
	if majorMinor(version) != spec {
		return "", fmt.Errorf("interpreter reports %s, want %s", version, spec)
	}
	return version, nil
}

// parseVersionOutput extracts the version number from interpreter
// --version output, which has the form "Python 3.12.4".
func parseVersionOutput(out string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 || fields[0] != "Python" {
		return "", fmt.Errorf("unrecognized interpreter version output %q", strings.TrimSpace(out))
	}
	return fields[1], nil
}

// majorMinor reduces a full version ("3.12.4") to its major.minor
// prefix ("3.12") for the exact-match comparison.
func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// runVersion is the default VersionRunner. It captures combined output
// because historical interpreters printed --version to stderr.
func runVersion(path string, args ...string) (string, error) {
	out, err := exec.Command(path, args...).CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
