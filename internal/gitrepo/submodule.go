package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// SubmoduleStatus holds metadata about a single submodule entry as
// parsed from `git submodule status` output.
//
// Example output lines:
//
//	-a1b2c3d4 mugen                       (uninitialized)
//	 a1b2c3d4 mugen (v1.2.0)              (in sync)
//	+a1b2c3d4 mugen (v1.2.0-3-ga1b2c3d)   (checked out at a different commit)
//	Ua1b2c3d4 mugen                       (merge conflicts)
type SubmoduleStatus struct {
	// Path is the submodule path relative to the checkout root.
	Path string `json:"path"`

	// SHA is the commit the submodule currently points to.
	SHA string `json:"sha"`

	// Ref is the describe output in parentheses, if any.
	Ref string `json:"ref,omitempty"`

	// Initialized is false for submodules that have never been
	// checked out ("-" prefix).
	Initialized bool `json:"initialized"`

	// OutOfSync is true when the working tree differs from the
	// recorded commit ("+" or "U" prefix).
	OutOfSync bool `json:"outOfSync"`
}

// Manager provides submodule operations by invoking the git CLI.
//
// It is stateless — all methods receive the checkout path as a
// parameter. The struct exists as a receiver to support future
// extensions such as a configurable git binary path.
type Manager struct{}

// NewManager creates a new submodule Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// HasSubmodules reports whether the checkout declares any submodules.
// The .gitmodules file is the declaration mechanism, so its absence
// means there is nothing to synchronize and the sync step can be
// skipped with a note rather than invoking git at all.
func (m *Manager) HasSubmodules(checkout string) bool {
	info, err := os.Stat(filepath.Join(checkout, ".gitmodules"))
	return err == nil && !info.IsDir()
}

// Sync initializes and updates all declared submodules so their working
// trees are populated. It runs `git submodule init` followed by
// `git submodule update`, mirroring the original installer's two calls.
//
// Both commands are idempotent: init on already-registered submodules
// and update on already-current checkouts are no-ops, so Sync is safe
// to run repeatedly.
func (m *Manager) Sync(ctx context.Context, checkout string) error {
	if _, err := runGit(ctx, checkout, "submodule", "init"); err != nil {
		return err
	}
	_, err := runGit(ctx, checkout, "submodule", "update")
	return err
}

// Status returns the state of every declared submodule, parsed from
// `git submodule status`.
func (m *Manager) Status(ctx context.Context, checkout string) ([]SubmoduleStatus, error) {
	output, err := runGit(ctx, checkout, "submodule", "status")
	if err != nil {
		return nil, err
	}
	return parseStatusOutput(output), nil
}

// IsRepository reports whether the checkout is inside a Git working
// tree. Used by doctor: submodule sync is only meaningful in a real
// clone, not in a source tarball.
func (m *Manager) IsRepository(ctx context.Context, checkout string) bool {
	out, err := runGit(ctx, checkout, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// runGit executes a git command with the given arguments against the
// checkout directory.
//
// The checkout path is passed to git via the -C flag, which causes git
// to change to that directory before doing anything else. This avoids
// changing the process's working directory.
//
// On failure, the stderr output is folded into a model.CLIError with
// ExitGitError so the CLI layer maps it to the right exit code.
func runGit(ctx context.Context, checkout string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", checkout}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}

// parseStatusOutput parses `git submodule status` output into
// SubmoduleStatus entries.
//
// Each line has the form "<prefix><sha> <path> (<describe>)" where the
// prefix character encodes the state: space (in sync), "-"
// (uninitialized), "+" (different commit checked out), "U" (conflicts).
// The describe suffix is optional.
func parseStatusOutput(output string) []SubmoduleStatus {
	var statuses []SubmoduleStatus

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		prefix := line[0]
		rest := strings.TrimSpace(line[1:])

		sha, remainder, ok := strings.Cut(rest, " ")
		if !ok {
			// A bare SHA with no path is not a valid status line.
			continue
		}

		status := SubmoduleStatus{
			SHA:         sha,
			Initialized: prefix != '-',
			OutOfSync:   prefix == '+' || prefix == 'U',
		}

		// The describe ref, when present, is the trailing parenthesized
		// group. Everything before it is the path, which may itself
		// contain spaces.
		remainder = strings.TrimSpace(remainder)
		if strings.HasSuffix(remainder, ")") {
			if idx := strings.LastIndex(remainder, "("); idx > 0 {
				status.Ref = strings.TrimSuffix(remainder[idx+1:], ")")
				remainder = strings.TrimSpace(remainder[:idx])
			}
		}
		status.Path = remainder

		statuses = append(statuses, status)
	}

	return statuses
}
