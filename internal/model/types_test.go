package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSequenceOrder pins the mandatory execution order of the bootstrap
// sequence: the interpreter gate first, then submodules, then venv,
// then installer upgrade, then the dependency install.
func TestSequenceOrder(t *testing.T) {
	seq := Sequence()

	require.Len(t, seq, 5)
	assert.Equal(t, StepInterpreterGate, seq[0])
	assert.Equal(t, StepSubmoduleSync, seq[1])
	assert.Equal(t, StepVenvProvision, seq[2])
	assert.Equal(t, StepInstallerUpgrade, seq[3])
	assert.Equal(t, StepDependencyInstall, seq[4])
}

// TestStepTitle verifies every step in the sequence has a distinct,
// non-empty human-readable title.
func TestStepTitle(t *testing.T) {
	seen := make(map[string]bool)
	for _, step := range Sequence() {
		title := step.Title()
		assert.NotEmpty(t, title, "step %s should have a title", step)
		assert.False(t, seen[title], "title %q should be unique", title)
		seen[title] = true
	}

	// Unknown steps fall back to their raw identifier.
	assert.Equal(t, "bogus", Step("bogus").Title())
}

// TestValidateVersionSpec exercises the version spec validation used by
// both the config layer and the interpreter gate. Only exact
// major.minor forms are accepted — patch components would make the
// exact-match gate semantics ambiguous.
func TestValidateVersionSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "default version", spec: "3.12", wantErr: false},
		{name: "older minor", spec: "3.11", wantErr: false},
		{name: "future major", spec: "4.0", wantErr: false},
		{name: "empty", spec: "", wantErr: true},
		{name: "major only", spec: "3", wantErr: true},
		{name: "patch component", spec: "3.12.1", wantErr: true},
		{name: "leading v", spec: "v3.12", wantErr: true},
		{name: "garbage", spec: "latest", wantErr: true},
		{name: "trailing dot", spec: "3.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersionSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestReportFailed checks the aggregate failure predicate on Report.
func TestReportFailed(t *testing.T) {
	clean := &Report{Results: []StepResult{
		{Step: StepInterpreterGate, State: StateOK},
		{Step: StepSubmoduleSync, State: StateSkipped},
		{Step: StepVenvProvision, State: StateOK},
	}}
	assert.False(t, clean.Failed())

	failed := &Report{Results: []StepResult{
		{Step: StepInterpreterGate, State: StateOK},
		{Step: StepSubmoduleSync, State: StateFailed},
		{Step: StepVenvProvision, State: StatePending},
	}}
	assert.True(t, failed.Failed())
}

// TestCLIErrorWrapping verifies the error wrapping contract:
// CLIError must expose its underlying error via errors.Is/errors.As
// and include it in the rendered message.
func TestCLIErrorWrapping(t *testing.T) {
	underlying := errors.New("exit status 128")
	err := WrapCLIError(ExitGitError, "git submodule update failed", underlying)

	assert.Equal(t, ExitGitError, err.Code)
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "git submodule update failed")
	assert.Contains(t, err.Error(), "exit status 128")

	// Plain CLIErrors render the message only.
	plain := NewCLIError(ExitUserCancelled, "operation cancelled by user")
	assert.Equal(t, "operation cancelled by user", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

// TestExitCodeContract pins the exit codes that are fixed by the
// original installer's behavior: 0 for success and 1 specifically for
// a missing interpreter.
func TestExitCodeContract(t *testing.T) {
	assert.Equal(t, ExitCode(0), ExitSuccess)
	assert.Equal(t, ExitCode(1), ExitPythonNotFound)

	// Each classified failure gets its own code above the fixed pair.
	codes := []ExitCode{
		ExitGeneralError, ExitGitError, ExitVenvError, ExitPipError,
		ExitDockerNotRunning, ExitSettingsError, ExitUserCancelled,
	}
	seen := make(map[ExitCode]bool)
	for _, c := range codes {
		assert.Greater(t, int(c), 1)
		assert.False(t, seen[c], "exit code %d should be unique", c)
		seen[c] = true
	}
}

// TestNotInstalledMessage pins the literal user-facing gate message.
func TestNotInstalledMessage(t *testing.T) {
	assert.Equal(t, "Python 3.12 is not installed.", NotInstalledMessage("3.12"))
	assert.Equal(t, "Python 3.11 is not installed.", NotInstalledMessage(" 3.11 "))
}
