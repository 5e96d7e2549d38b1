// Package cli — doctor.go implements the "mugen-bootstrap doctor" command.
//
// The doctor command evaluates every bootstrap prerequisite without
// mutating anything: the required Python version, git availability, the
// checkout being a working tree, submodule state, the requirements
// manifest, and Docker daemon reachability. It is the dry-run
// counterpart of setup — a green doctor run means setup will get past
// its preconditions.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/model"
	"github.com/mugen-webui/mugen-bootstrap/internal/preflight"
)

// doctorFlags holds the flag values for the doctor command.
type doctorFlags struct {
	// container makes the Docker daemon check required instead of
	// informational, matching a planned "setup --container" run.
	container bool
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check bootstrap prerequisites without changing anything",
		Long: `Evaluate every prerequisite of the bootstrap sequence and report the
results. Nothing is modified.

The exit status reflects the findings: 1 when the required Python
version is missing, 2 when any other required prerequisite fails,
0 when everything required is available.

Examples:
  mugen-bootstrap doctor
  mugen-bootstrap doctor --container
  mugen-bootstrap doctor --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.container, "container", false, "Require the Docker daemon (for sandbox bootstraps)")

	return cmd
}

// runDoctor evaluates all checks and maps the outcome onto the exit
// code contract.
func runDoctor(ctx context.Context, flags *doctorFlags) error {
	root, err := checkoutRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}

	checks := preflight.Checks(root, cfg, flags.container)
	statuses := preflight.Run(ctx, checks)

	printDoctorResult(statuses)

	if !preflight.RequiredFailed(statuses) {
		return nil
	}

	// The interpreter check carries the contract exit status 1; any
	// other required failure is a general error.
	pythonName := "python " + cfg.PythonVersion
	for _, s := range statuses {
		if s.Name == pythonName && !s.Available {
			return model.NewCLIError(model.ExitPythonNotFound, model.NotInstalledMessage(cfg.PythonVersion))
		}
	}
	return model.NewCLIError(model.ExitGeneralError, "required prerequisites are missing")
}

// printDoctorResult outputs the check statuses in text or JSON format.
func printDoctorResult(statuses []preflight.Status) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{"checks": statuses}, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, s := range statuses {
		marker := "✗"
		if s.Available {
			marker = "✓"
		} else if s.Optional {
			marker = "-"
		}

		line := fmt.Sprintf("%s %-24s", marker, s.Name)
		if s.Detail != "" {
			line += "  " + s.Detail
		}
		if s.Optional && !s.Available {
			line += "  (optional)"
		}
		fmt.Println(line)
	}
}
