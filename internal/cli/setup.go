// Package cli — setup.go implements the "mugen-bootstrap setup" command.
//
// The setup command is the primary user-facing operation. It runs the
// full bootstrap sequence against the current checkout:
//  1. Verify the required Python major.minor version is installed
//  2. Initialize and update Git submodules
//  3. Provision the virtual environment
//  4. Upgrade pip inside the environment
//  5. Install the requirements manifest
//
// The sequence is strictly ordered and halts at the first failure.
// A gate failure (step 1) reproduces the batch installer's behavior:
// the "Python X.Y is not installed." line on stdout, a pause when the
// terminal is interactive, then exit status 1.
//
// With --container the same sequence runs against a Docker sandbox:
// the checkout is bind-mounted into a python:<version>-slim container
// and the environment is provisioned inside it instead of on the host.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/gitrepo"
	"github.com/mugen-webui/mugen-bootstrap/internal/model"
	"github.com/mugen-webui/mugen-bootstrap/internal/pip"
	"github.com/mugen-webui/mugen-bootstrap/internal/python"
	"github.com/mugen-webui/mugen-bootstrap/internal/sandbox"
)

// setupFlags holds the flag values for the setup command.
type setupFlags struct {
	skipSubmodules bool // --skip-submodules: don't touch Git submodules
	recreate       bool // --recreate: rebuild the venv from scratch
	container      bool // --container: bootstrap inside a Docker sandbox
}

// setupStep pairs a step identifier with its skip predicate and action.
// executeSteps runs a slice of these in order.
type setupStep struct {
	id model.Step

	// skip, when non-nil, decides whether the step is skipped and why.
	skip func() (bool, string)

	// run performs the step and returns a human-readable detail
	// (resolved interpreter, sync summary) for the report.
	run func(ctx context.Context) (string, error)
}

// NewSetupCommand creates the "setup" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewSetupCommand() *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Bootstrap the checkout: verify Python, sync submodules, build the venv",
		Long: `Run the full bootstrap sequence against the current checkout:

  1. Verify the required Python version is installed (exact major.minor)
  2. Initialize and update Git submodules
  3. Create the virtual environment
  4. Upgrade pip inside the environment
  5. Install requirements.txt into the environment

The sequence halts at the first failure. Re-running setup is safe:
an existing virtual environment is reused unless --recreate is given.

Examples:
  mugen-bootstrap setup
  mugen-bootstrap setup --recreate
  mugen-bootstrap setup --skip-submodules
  mugen-bootstrap setup --container`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().BoolVar(&flags.skipSubmodules, "skip-submodules", false, "Skip Git submodule synchronization")
	cmd.Flags().BoolVar(&flags.recreate, "recreate", false, "Remove and rebuild an existing virtual environment")
	cmd.Flags().BoolVar(&flags.container, "container", false, "Bootstrap inside a Docker sandbox instead of the host")

	return cmd
}

// runSetup is the main orchestration function for the setup command.
func runSetup(ctx context.Context, flags *setupFlags) error {
	root, err := checkoutRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}
	VerboseLog("Checkout: %s", root)
	VerboseLog("Required interpreter: Python %s", cfg.PythonVersion)

	var (
		steps  []setupStep
		report *model.Report
	)
	if flags.container {
		steps, report, err = containerSteps(ctx, root, cfg, flags)
		if err != nil {
			return err
		}
	} else {
		steps, report = localSteps(root, cfg, flags)
	}

	stepErr := executeSteps(ctx, steps, report)

	// The interpreter gate has fixed failure semantics: the literal
	// not-installed line on stdout, a pause on interactive terminals,
	// exit status 1. Handled here rather than in the generic error path
	// so the message lands on stdout without an "Error:" prefix.
	if cliErr, ok := stepErr.(*model.CLIError); ok && cliErr.Code == model.ExitPythonNotFound {
		printSetupReport(report)
		if !IsJSONOutput() {
			fmt.Println(model.NotInstalledMessage(cfg.PythonVersion))
			pauseIfInteractive()
		}
		os.Exit(int(model.ExitPythonNotFound))
	}

	printSetupReport(report)
	if stepErr != nil {
		return stepErr
	}
	return nil
}

// localSteps builds the bootstrap sequence for a host bootstrap.
// The returned report is filled in by executeSteps; steps communicate
// through closures (the gate resolves the interpreter the venv step
// creates from).
func localSteps(root string, cfg *config.Config, flags *setupFlags) ([]setupStep, *model.Report) {
	report := &model.Report{VenvPath: cfg.VenvPath(root)}

	prober := python.NewProber()
	git := gitrepo.NewManager()
	venv := python.NewVenv(cfg.VenvPath(root))

	// Resolved by the gate step, consumed by the venv step.
	var interp *python.Interpreter

	steps := []setupStep{
		{
			id: model.StepInterpreterGate,
			run: func(ctx context.Context) (string, error) {
				found, err := prober.Find(cfg.PythonVersion)
				if err != nil {
					return "", err
				}
				interp = found
				report.Python = found.String()
				return found.String(), nil
			},
		},
		{
			id: model.StepSubmoduleSync,
			skip: func() (bool, string) {
				if flags.skipSubmodules {
					return true, "disabled by --skip-submodules"
				}
				if !git.HasSubmodules(root) {
					return true, "no .gitmodules in checkout"
				}
				return false, ""
			},
			run: func(ctx context.Context) (string, error) {
				if err := git.Sync(ctx, root); err != nil {
					return "", err
				}
				return "submodules initialized and updated", nil
			},
		},
		{
			id: model.StepVenvProvision,
			skip: func() (bool, string) {
				if venv.Exists() && !flags.recreate {
					return true, "already exists at " + venv.Dir
				}
				return false, ""
			},
			run: func(ctx context.Context) (string, error) {
				if flags.recreate && venv.Exists() {
					VerboseLog("Removing existing environment at %s", venv.Dir)
					if err := venv.Remove(); err != nil {
						return "", err
					}
				}
				if err := venv.Create(ctx, interp); err != nil {
					return "", err
				}
				return "created at " + venv.Dir, nil
			},
		},
		{
			id: model.StepInstallerUpgrade,
			run: func(ctx context.Context) (string, error) {
				installer := pip.NewInstaller(venv.Python())
				if err := installer.UpgradeSelf(ctx); err != nil {
					return "", err
				}
				return "pip upgraded", nil
			},
		},
		{
			id: model.StepDependencyInstall,
			run: func(ctx context.Context) (string, error) {
				installer := pip.NewInstaller(venv.Python())
				if err := installer.InstallRequirements(ctx, cfg.RequirementsPath(root)); err != nil {
					return "", err
				}
				return "installed from " + cfg.Requirements, nil
			},
		},
	}
	return steps, report
}

// containerSteps builds the bootstrap sequence for a sandbox bootstrap.
// The sandbox is resolved (or provisioned) up front; the returned steps
// then run the same sequence through docker exec, with the environment
// living at a fixed path inside the container.
func containerSteps(ctx context.Context, root string, cfg *config.Config, flags *setupFlags) ([]setupStep, *model.Report, error) {
	cli, err := sandbox.NewClient()
	if err != nil {
		return nil, nil, err
	}
	// The client is only needed for discovery and start; exec goes
	// through the docker CLI. Closing here is fine.
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return nil, nil, err
	}

	info, err := sandbox.FindByCheckout(ctx, cli, root)
	if err != nil {
		return nil, nil, err
	}
	if info == nil {
		name := sandbox.ContainerName(cfg.Sandbox.NamePrefix, root)
		VerboseLog("Provisioning sandbox %s from image %s", name, cfg.SandboxImage())
		info, err = sandbox.Provision(ctx, sandbox.ProvisionOptions{
			Image:         cfg.SandboxImage(),
			Name:          name,
			CheckoutPath:  root,
			PythonVersion: cfg.PythonVersion,
			PublishPort:   cfg.UIPort,
		})
		if err != nil {
			return nil, nil, err
		}
	} else if info.Status != "running" {
		VerboseLog("Starting existing sandbox %s", info.ContainerName)
		if err := sandbox.Start(ctx, cli, info.ContainerID); err != nil {
			return nil, nil, err
		}
	}

	report := &model.Report{
		VenvPath: sandbox.VenvDir,
		Sandbox:  info.ContainerName,
	}
	git := gitrepo.NewManager()

	// execCapture runs a command in the sandbox and returns its stdout.
	execCapture := func(ctx context.Context, args ...string) (string, error) {
		var out, errOut bytes.Buffer
		if err := sandbox.Exec(ctx, info.ContainerName, nil, &out, &errOut, args...); err != nil {
			return "", fmt.Errorf("%w: %s", err, errOut.String())
		}
		return out.String(), nil
	}

	steps := []setupStep{
		{
			id: model.StepInterpreterGate,
			run: func(ctx context.Context) (string, error) {
				out, err := execCapture(ctx, "python", "--version")
				if err != nil {
					return "", model.WrapCLIError(model.ExitPythonNotFound,
						model.NotInstalledMessage(cfg.PythonVersion), err)
				}
				version, err := python.VerifyVersionOutput(out, cfg.PythonVersion)
				if err != nil {
					return "", model.WrapCLIError(model.ExitPythonNotFound,
						model.NotInstalledMessage(cfg.PythonVersion), err)
				}
				report.Python = fmt.Sprintf("%s: python (Python %s)", info.ContainerName, version)
				return report.Python, nil
			},
		},
		{
			// Submodule sync runs on the host: the sandbox image carries
			// no git, and the checkout is bind-mounted anyway.
			id: model.StepSubmoduleSync,
			skip: func() (bool, string) {
				if flags.skipSubmodules {
					return true, "disabled by --skip-submodules"
				}
				if !git.HasSubmodules(root) {
					return true, "no .gitmodules in checkout"
				}
				return false, ""
			},
			run: func(ctx context.Context) (string, error) {
				if err := git.Sync(ctx, root); err != nil {
					return "", err
				}
				return "submodules initialized and updated", nil
			},
		},
		{
			id: model.StepVenvProvision,
			run: func(ctx context.Context) (string, error) {
				args := []string{"python", "-m", "venv"}
				if flags.recreate {
					args = append(args, "--clear")
				}
				args = append(args, sandbox.VenvDir)
				if _, err := execCapture(ctx, args...); err != nil {
					return "", model.WrapCLIError(model.ExitVenvError,
						"failed to create virtual environment in sandbox", err)
				}
				return "created at " + sandbox.VenvDir, nil
			},
		},
		{
			id: model.StepInstallerUpgrade,
			run: func(ctx context.Context) (string, error) {
				err := sandbox.Exec(ctx, info.ContainerName, nil, os.Stdout, os.Stderr,
					sandbox.VenvPython, "-m", "pip", "install", "--upgrade", "pip")
				if err != nil {
					return "", model.WrapCLIError(model.ExitPipError, "failed to upgrade pip in sandbox", err)
				}
				return "pip upgraded", nil
			},
		},
		{
			id: model.StepDependencyInstall,
			run: func(ctx context.Context) (string, error) {
				// The manifest path is container-side: the checkout is
				// mounted at the workspace root.
				manifestPath := sandbox.WorkspaceMount + "/" + cfg.Requirements
				err := sandbox.Exec(ctx, info.ContainerName, nil, os.Stdout, os.Stderr,
					sandbox.VenvPython, "-m", "pip", "install", "-r", manifestPath)
				if err != nil {
					return "", model.WrapCLIError(model.ExitPipError, "failed to install requirements in sandbox", err)
				}
				return "installed from " + cfg.Requirements, nil
			},
		},
	}
	return steps, report, nil
}

// executeSteps runs the steps in order, recording one StepResult per
// step into the report. The sequence halts at the first failure; steps
// after it are recorded as pending. Returns the failing step's error,
// or nil when every step succeeded or was skipped.
func executeSteps(ctx context.Context, steps []setupStep, report *model.Report) error {
	var failed error

	for _, s := range steps {
		result := model.StepResult{Step: s.id, State: model.StatePending}

		switch {
		case failed != nil:
			// Halt semantics: everything after a failure stays pending.

		default:
			if s.skip != nil {
				if skip, reason := s.skip(); skip {
					result.State = model.StateSkipped
					result.Detail = reason
					VerboseLog("Step %s skipped: %s", s.id, reason)
					break
				}
			}

			VerboseLog("Step %s: %s", s.id, s.id.Title())
			start := time.Now()
			detail, err := s.run(ctx)
			result.Duration = time.Since(start)

			if err != nil {
				result.State = model.StateFailed
				result.Detail = err.Error()
				failed = err
			} else {
				result.State = model.StateOK
				result.Detail = detail
			}
		}

		report.Results = append(report.Results, result)
	}

	return failed
}

// pauseIfInteractive reproduces the installer's pause-before-close
// behavior: when stdin is a terminal, wait for Enter so a user who
// double-clicked the binary can read the message before the window
// closes. Non-interactive invocations (CI, pipes) never block.
func pauseIfInteractive() {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return
	}
	fmt.Print("Press Enter to continue . . . ")
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}

// printSetupReport outputs the setup report in text or JSON format.
func printSetupReport(report *model.Report) {
	if IsJSONOutput() {
		printSetupReportJSON(report)
	} else {
		printSetupReportText(report)
	}
}

// printSetupReportJSON outputs the report as structured JSON.
func printSetupReportJSON(report *model.Report) {
	data, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(data))
}

// printSetupReportText outputs the report as human-readable text.
func printSetupReportText(report *model.Report) {
	for _, res := range report.Results {
		marker := " "
		switch res.State {
		case model.StateOK:
			marker = "✓"
		case model.StateSkipped:
			marker = "-"
		case model.StateFailed:
			marker = "✗"
		}

		line := fmt.Sprintf("%s %-32s", marker, res.Step.Title())
		if res.Detail != "" {
			line += "  " + res.Detail
		}
		fmt.Println(line)
	}

	if report.Failed() {
		return
	}

	fmt.Println()
	if report.Sandbox != "" {
		fmt.Printf("Environment ready in sandbox %q at %s\n", report.Sandbox, report.VenvPath)
	} else {
		fmt.Printf("Environment ready at %s\n", report.VenvPath)
	}
}
