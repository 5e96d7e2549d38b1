// Package model defines the domain types for the mugen-bootstrap CLI.
//
// The types here describe the bootstrap sequence itself (steps and their
// results), the exit code contract of the binary, and the metadata
// attached to sandbox containers. They are shared by every other
// internal package, which keeps the exec-heavy packages (python, pip,
// gitrepo, sandbox) free of cross-dependencies.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Step identifies one operation of the bootstrap sequence.
// The sequence is strictly ordered — see Sequence() for the canonical order.
type Step string

const (
	// StepInterpreterGate verifies the required Python major.minor version
	// is installed. This is the only step with user-facing failure handling.
	StepInterpreterGate Step = "interpreter-gate"

	// StepSubmoduleSync initializes and updates the checkout's Git submodules.
	StepSubmoduleSync Step = "submodule-sync"

	// StepVenvProvision creates the isolated virtual environment directory.
	StepVenvProvision Step = "venv-provision"

	// StepInstallerUpgrade upgrades pip inside the virtual environment
	// before any packages are installed.
	StepInstallerUpgrade Step = "installer-upgrade"

	// StepDependencyInstall installs the requirements manifest into the
	// virtual environment.
	StepDependencyInstall Step = "dependency-install"
)

// String returns the string representation of the step.
// Satisfies fmt.Stringer for CLI and JSON output.
func (s Step) String() string {
	return string(s)
}

// Title returns a short human-readable label for the step,
// used in the setup progress output.
func (s Step) Title() string {
	switch s {
	case StepInterpreterGate:
		return "Verify Python interpreter"
	case StepSubmoduleSync:
		return "Synchronize submodules"
	case StepVenvProvision:
		return "Provision virtual environment"
	case StepInstallerUpgrade:
		return "Upgrade pip"
	case StepDependencyInstall:
		return "Install requirements"
	default:
		return string(s)
	}
}

// Sequence returns the bootstrap steps in their mandatory execution order.
// Callers must never reorder or interleave these: submodule sync always
// precedes venv provisioning, which always precedes installation.
func Sequence() []Step {
	return []Step{
		StepInterpreterGate,
		StepSubmoduleSync,
		StepVenvProvision,
		StepInstallerUpgrade,
		StepDependencyInstall,
	}
}

// StepState is the outcome of a single bootstrap step.
type StepState string

const (
	// StatePending means the step has not been attempted. Steps after a
	// failed step remain pending — the sequence halts at the first failure.
	StatePending StepState = "pending"

	// StateOK means the step completed successfully.
	StateOK StepState = "ok"

	// StateSkipped means the step was intentionally not run
	// (e.g., no .gitmodules file, or --skip-submodules).
	StateSkipped StepState = "skipped"

	// StateFailed means the step was attempted and failed.
	StateFailed StepState = "failed"
)

// String returns the string representation of the step state.
func (s StepState) String() string {
	return string(s)
}

// StepResult records the outcome of one bootstrap step for reporting.
type StepResult struct {
	// Step is the step identifier.
	Step Step `json:"step"`

	// State is the outcome of the step.
	State StepState `json:"state"`

	// Detail is an optional human-readable note (skip reason,
	// resolved interpreter path, failure summary).
	Detail string `json:"detail,omitempty"`

	// Duration is how long the step took. Zero for pending/skipped steps.
	Duration time.Duration `json:"-"`
}

// Report aggregates the results of a full setup invocation.
type Report struct {
	// Results holds one entry per step in Sequence() order.
	Results []StepResult `json:"results"`

	// Python is the resolved interpreter (command + version) that passed
	// the gate. Empty when the gate failed.
	Python string `json:"python,omitempty"`

	// VenvPath is the absolute path of the provisioned environment.
	VenvPath string `json:"venvPath,omitempty"`

	// Sandbox is the name of the sandbox container when the environment
	// was provisioned with --container. Empty for local bootstraps.
	Sandbox string `json:"sandbox,omitempty"`
}

// Failed reports whether any step in the report failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.State == StateFailed {
			return true
		}
	}
	return false
}

// versionSpecRegex matches an exact major.minor Python version spec,
// e.g. "3.12". Patch components are deliberately rejected: the gate
// compares major.minor only, so "3.12.1" would be ambiguous.
var versionSpecRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// ValidateVersionSpec checks that the given string is a valid
// major.minor interpreter version spec (e.g. "3.12").
func ValidateVersionSpec(spec string) error {
	if spec == "" {
		return fmt.Errorf("python version must not be empty")
	}
	if !versionSpecRegex.MatchString(spec) {
		return fmt.Errorf("invalid python version %q: expected exact major.minor form such as 3.12", spec)
	}
	return nil
}

// SandboxInfo holds runtime information about a managed sandbox container.
// This data is reconstructed from Docker API queries and container labels —
// there is no state file on disk.
type SandboxInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// Image is the interpreter image the sandbox was created from
	// (e.g. "python:3.12-slim").
	Image string `json:"image"`

	// CheckoutPath is the absolute host path of the checkout that is
	// bind-mounted into the sandbox.
	CheckoutPath string `json:"checkoutPath"`

	// PythonVersion is the major.minor interpreter version the sandbox
	// provides.
	PythonVersion string `json:"pythonVersion"`

	// Status is the Docker container status (e.g. "running", "exited").
	Status string `json:"status"`

	// CreatedAt is when the sandbox was provisioned.
	CreatedAt time.Time `json:"createdAt"`

	// Labels is the full label set on the container, including the
	// mugen.* management labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// ExitCode defines the CLI exit code contract. Codes 0 and 1 are fixed
// by the original installer's behavior: 1 specifically means the
// required interpreter version was not found. Everything else is
// classified per failing subsystem so scripts can tell failures apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitPythonNotFound indicates the required Python major.minor
	// version is not installed. Fixed at 1 by contract.
	ExitPythonNotFound ExitCode = 1

	// ExitGeneralError indicates an unclassified error.
	ExitGeneralError ExitCode = 2

	// ExitGitError indicates a Git operation (submodule sync) failed.
	ExitGitError ExitCode = 3

	// ExitVenvError indicates virtual environment provisioning failed.
	ExitVenvError ExitCode = 4

	// ExitPipError indicates a pip invocation (upgrade or install) failed.
	ExitPipError ExitCode = 5

	// ExitDockerNotRunning indicates the Docker daemon is not reachable.
	// Only relevant for --container bootstraps.
	ExitDockerNotRunning ExitCode = 6

	// ExitSettingsError indicates the webui settings file could not be
	// read or written.
	ExitSettingsError ExitCode = 7

	// ExitUserCancelled indicates the user declined an interactive prompt.
	ExitUserCancelled ExitCode = 8
)

// CLIError is a custom error type that carries an exit code.
// It lets the CLI layer translate subsystem failures into the
// exit code contract above.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// NotInstalledMessage is the user-facing message printed when the
// interpreter gate fails. The wording matches the original installer
// verbatim, e.g. "Python 3.12 is not installed."
func NotInstalledMessage(versionSpec string) string {
	return fmt.Sprintf("Python %s is not installed.", strings.TrimSpace(versionSpec))
}
