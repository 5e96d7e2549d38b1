// Package preflight evaluates the prerequisites of the bootstrap
// sequence without mutating anything. The doctor command renders its
// results; the setup command reuses only the interpreter gate, which
// must stay a hard precondition rather than a report line.
package preflight

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/gitrepo"
	"github.com/mugen-webui/mugen-bootstrap/internal/manifest"
	"github.com/mugen-webui/mugen-bootstrap/internal/python"
	"github.com/mugen-webui/mugen-bootstrap/internal/sandbox"
)

// Check defines one prerequisite probe.
type Check struct {
	// Name is the short identifier shown in doctor output.
	Name string

	// Description says what the prerequisite is needed for.
	Description string

	// Optional checks are reported but never fail the doctor run.
	Optional bool

	// Probe evaluates the prerequisite. It returns availability plus a
	// human-readable detail (resolved version, path, or failure reason).
	Probe func(ctx context.Context) (bool, string)
}

// Status reports the outcome of one Check.
type Status struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Run evaluates the provided checks in order and reports each outcome.
// Probes are independent — one failure never short-circuits the rest,
// so the user sees the full picture in one pass.
func Run(ctx context.Context, checks []Check) []Status {
	results := make([]Status, 0, len(checks))
	for _, c := range checks {
		status := Status{
			Name:        c.Name,
			Description: c.Description,
			Optional:    c.Optional,
		}
		status.Available, status.Detail = c.Probe(ctx)
		results = append(results, status)
	}
	return results
}

// RequiredFailed reports whether any non-optional check failed.
func RequiredFailed(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Optional && !s.Available {
			return true
		}
	}
	return false
}

// Checks builds the prerequisite set for a checkout. When
// requireDocker is true (container-mode bootstrap), the Docker daemon
// check becomes required instead of informational.
func Checks(checkoutRoot string, cfg *config.Config, requireDocker bool) []Check {
	prober := python.NewProber()
	git := gitrepo.NewManager()

	return []Check{
		{
			Name:        "python " + cfg.PythonVersion,
			Description: "exact interpreter version required by the gate",
			Probe: func(ctx context.Context) (bool, string) {
				interp, err := prober.Find(cfg.PythonVersion)
				if err != nil {
					return false, err.Error()
				}
				return true, interp.String()
			},
		},
		{
			Name:        "git",
			Description: "submodule synchronization",
			Probe: func(ctx context.Context) (bool, string) {
				path, err := exec.LookPath("git")
				if err != nil {
					return false, "git binary not found on PATH"
				}
				return true, path
			},
		},
		{
			Name:        "git repository",
			Description: "checkout must be a working tree for submodule sync",
			Probe: func(ctx context.Context) (bool, string) {
				if git.IsRepository(ctx, checkoutRoot) {
					return true, checkoutRoot
				}
				return false, fmt.Sprintf("%s is not inside a Git working tree", checkoutRoot)
			},
		},
		{
			Name:        "submodules",
			Description: "declared external source dependencies",
			Optional:    true,
			Probe: func(ctx context.Context) (bool, string) {
				if !git.HasSubmodules(checkoutRoot) {
					return true, "none declared"
				}
				statuses, err := git.Status(ctx, checkoutRoot)
				if err != nil {
					return false, err.Error()
				}
				pending := 0
				for _, s := range statuses {
					if !s.Initialized || s.OutOfSync {
						pending++
					}
				}
				if pending > 0 {
					return true, fmt.Sprintf("%d declared, %d pending sync", len(statuses), pending)
				}
				return true, fmt.Sprintf("%d declared, all in sync", len(statuses))
			},
		},
		{
			Name:        "requirements manifest",
			Description: "dependency list consumed by the install step",
			Probe: func(ctx context.Context) (bool, string) {
				path := cfg.RequirementsPath(checkoutRoot)
				entries, err := manifest.Load(path)
				if err != nil {
					return false, fmt.Sprintf("cannot read %s", path)
				}
				return true, fmt.Sprintf("%d package(s) declared", len(manifest.Names(entries)))
			},
		},
		{
			Name:        "docker daemon",
			Description: "container-based bootstrap sandbox",
			Optional:    !requireDocker,
			Probe: func(ctx context.Context) (bool, string) {
				cli, err := sandbox.NewClient()
				if err != nil {
					return false, err.Error()
				}
				defer func() { _ = cli.Close() }()

				if err := cli.Ping(ctx); err != nil {
					return false, err.Error()
				}
				return true, "reachable"
			},
		},
	}
}
