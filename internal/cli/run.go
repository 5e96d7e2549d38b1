// Package cli — run.go implements the "mugen-bootstrap run" command.
//
// The run command launches the webui entry point with the interpreter
// of the provisioned environment. It never activates the environment in
// shell terms — the venv's own python binary is invoked directly, which
// pins the environment regardless of the caller's shell state.
//
// Before launching, a free listen port is chosen: the configured port
// is used when available, otherwise the next free port upward. The
// choice is handed to the webui via GRADIO_SERVER_PORT.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/model"
	"github.com/mugen-webui/mugen-bootstrap/internal/port"
	"github.com/mugen-webui/mugen-bootstrap/internal/python"
	"github.com/mugen-webui/mugen-bootstrap/internal/sandbox"
)

// portScanWidth bounds the upward search for a free port when the
// preferred one is taken.
const portScanWidth = 100

// runFlags holds the flag values for the run command.
type runFlags struct {
	port      int  // --port: preferred listen port, overrides the config
	container bool // --container: launch inside the sandbox
}

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [-- extra-args...]",
		Short: "Launch the webui from the provisioned environment",
		Long: `Launch the webui entry point with the virtual environment's
interpreter. The environment must have been provisioned by "setup"
first.

Arguments after "--" are passed through to the entry point.

Examples:
  mugen-bootstrap run
  mugen-bootstrap run --port 7870
  mugen-bootstrap run --container
  mugen-bootstrap run -- --share`,

		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), flags, args)
		},
	}

	cmd.Flags().IntVar(&flags.port, "port", 0, "Preferred listen port (default: config ui_port)")
	cmd.Flags().BoolVar(&flags.container, "container", false, "Launch inside the Docker sandbox")

	return cmd
}

// runRun launches the webui locally or inside the sandbox.
func runRun(ctx context.Context, flags *runFlags, extraArgs []string) error {
	root, err := checkoutRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}

	preferred := cfg.UIPort
	if flags.port != 0 {
		preferred = flags.port
	}

	if flags.container {
		return runInSandbox(ctx, root, cfg, preferred, extraArgs)
	}
	return runLocal(ctx, root, cfg, preferred, extraArgs)
}

// runLocal launches the entry point with the venv interpreter on the host.
func runLocal(ctx context.Context, root string, cfg *config.Config, preferred int, extraArgs []string) error {
	venv := python.NewVenv(cfg.VenvPath(root))
	if !venv.Exists() {
		return model.NewCLIError(model.ExitVenvError,
			fmt.Sprintf("no virtual environment at %s — run \"mugen-bootstrap setup\" first", venv.Dir))
	}

	entry := cfg.WebUIEntryPath(root)
	if _, err := os.Stat(entry); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("webui entry point %s not found", entry), err)
	}

	scanner := port.NewScanner()
	chosen, err := scanner.Choose(preferred, portScanWidth)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "no free listen port", err)
	}
	if chosen != preferred {
		VerboseLog("Port %d taken, using %d", preferred, chosen)
	}

	args := append([]string{entry}, extraArgs...)
	cmd := exec.CommandContext(ctx, venv.Python(), args...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), fmt.Sprintf("GRADIO_SERVER_PORT=%d", chosen))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Printf("Launching %s on port %d\n", cfg.WebUIEntry, chosen)
	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "webui exited with an error", err)
	}
	return nil
}

// runInSandbox launches the entry point inside the sandbox container.
// The configured port was published at provision time, so the scan is
// skipped; the webui binds all interfaces so the published port is
// reachable from the host browser.
func runInSandbox(ctx context.Context, root string, cfg *config.Config, preferred int, extraArgs []string) error {
	cli, err := sandbox.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	info, err := sandbox.FindByCheckout(ctx, cli, root)
	if err != nil {
		return err
	}
	if info == nil {
		return model.NewCLIError(model.ExitVenvError,
			"no sandbox for this checkout — run \"mugen-bootstrap setup --container\" first")
	}
	if info.Status != "running" {
		VerboseLog("Starting sandbox %s", info.ContainerName)
		if err := sandbox.Start(ctx, cli, info.ContainerID); err != nil {
			return err
		}
	}

	env := map[string]string{
		"GRADIO_SERVER_NAME": "0.0.0.0",
		"GRADIO_SERVER_PORT": fmt.Sprintf("%d", preferred),
	}
	args := append([]string{sandbox.VenvPython, sandbox.WorkspaceMount + "/" + cfg.WebUIEntry}, extraArgs...)

	fmt.Printf("Launching %s in sandbox %s on port %d\n", cfg.WebUIEntry, info.ContainerName, preferred)
	if err := sandbox.Exec(ctx, info.ContainerName, env, os.Stdout, os.Stderr, args...); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "webui exited with an error", err)
	}
	return nil
}
