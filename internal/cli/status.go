// Package cli — status.go implements the "mugen-bootstrap status" command.
//
// The status command reports what the bootstrap has produced so far:
// whether the virtual environment exists, what the requirements
// manifest pins, the submodule state of the checkout, and any sandbox
// container provisioned for it. Like doctor it mutates nothing, but
// where doctor looks at prerequisites, status looks at outcomes.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/gitrepo"
	"github.com/mugen-webui/mugen-bootstrap/internal/manifest"
	"github.com/mugen-webui/mugen-bootstrap/internal/model"
	"github.com/mugen-webui/mugen-bootstrap/internal/python"
	"github.com/mugen-webui/mugen-bootstrap/internal/sandbox"
)

// statusReport is the aggregate the status command renders.
type statusReport struct {
	Checkout     string                    `json:"checkout"`
	VenvPath     string                    `json:"venvPath"`
	VenvReady    bool                      `json:"venvReady"`
	Requirements []string                  `json:"requirements,omitempty"`
	Submodules   []gitrepo.SubmoduleStatus `json:"submodules,omitempty"`
	Sandbox      *model.SandboxInfo        `json:"sandbox,omitempty"`
	SandboxNote  string                    `json:"sandboxNote,omitempty"`
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the bootstrap state of the checkout",
		Long: `Report the current bootstrap state of the checkout: virtual
environment, pinned requirements, submodule state, and any sandbox
container provisioned for it.

Examples:
  mugen-bootstrap status
  mugen-bootstrap status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
	return cmd
}

// runStatus gathers the report. Every probe is best-effort: a missing
// manifest or an unreachable Docker daemon degrades the report instead
// of failing the command.
func runStatus(ctx context.Context) error {
	root, err := checkoutRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}

	venv := python.NewVenv(cfg.VenvPath(root))
	report := &statusReport{
		Checkout:  root,
		VenvPath:  venv.Dir,
		VenvReady: venv.Exists(),
	}

	if entries, err := manifest.Load(cfg.RequirementsPath(root)); err == nil {
		report.Requirements = manifest.Names(entries)
	} else {
		VerboseLog("Could not read requirements manifest: %v", err)
	}

	git := gitrepo.NewManager()
	if git.HasSubmodules(root) {
		if subs, err := git.Status(ctx, root); err == nil {
			report.Submodules = subs
		} else {
			VerboseLog("Could not read submodule status: %v", err)
		}
	}

	report.Sandbox, report.SandboxNote = findSandbox(ctx, root)

	printStatusReport(report)
	return nil
}

// findSandbox looks up the sandbox container for this checkout.
// Docker being unreachable is reported as a note, not an error.
func findSandbox(ctx context.Context, root string) (*model.SandboxInfo, string) {
	cli, err := sandbox.NewClient()
	if err != nil {
		return nil, "docker unavailable"
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return nil, "docker daemon not reachable"
	}

	info, err := sandbox.FindByCheckout(ctx, cli, root)
	if err != nil {
		VerboseLog("Sandbox lookup failed: %v", err)
		return nil, "sandbox lookup failed"
	}
	return info, ""
}

// printStatusReport outputs the status report in text or JSON format.
func printStatusReport(report *statusReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Checkout: %s\n", report.Checkout)

	if report.VenvReady {
		fmt.Printf("Environment: ready at %s\n", report.VenvPath)
	} else {
		fmt.Printf("Environment: not provisioned (expected at %s) — run \"mugen-bootstrap setup\"\n", report.VenvPath)
	}

	if len(report.Requirements) > 0 {
		fmt.Printf("Requirements: %d pinned package(s)\n", len(report.Requirements))
		for _, name := range report.Requirements {
			fmt.Printf("  %s\n", name)
		}
	}

	if len(report.Submodules) > 0 {
		fmt.Println("Submodules:")
		for _, sub := range report.Submodules {
			state := "in sync"
			if !sub.Initialized {
				state = "not initialized"
			} else if sub.OutOfSync {
				state = "out of sync"
			}
			fmt.Printf("  %-24s %s\n", sub.Path, state)
		}
	}

	switch {
	case report.Sandbox != nil:
		fmt.Printf("Sandbox: %s (%s, image %s)\n",
			report.Sandbox.ContainerName, report.Sandbox.Status, report.Sandbox.Image)
	case report.SandboxNote != "":
		fmt.Printf("Sandbox: none (%s)\n", report.SandboxNote)
	default:
		fmt.Println("Sandbox: none")
	}
}
