// Package cli — clean.go implements the "mugen-bootstrap clean" command.
//
// The clean command removes what the bootstrap produced: the virtual
// environment directory, and with --containers also the sandbox
// container provisioned for this checkout. The checkout itself is never
// touched.
//
// By default, the command prompts for confirmation before proceeding.
// The --force flag skips the confirmation prompt.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/model"
	"github.com/mugen-webui/mugen-bootstrap/internal/python"
	"github.com/mugen-webui/mugen-bootstrap/internal/sandbox"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	// force skips the interactive confirmation prompt when true.
	force bool

	// containers also removes the checkout's sandbox container.
	containers bool
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the virtual environment (and optionally the sandbox)",
		Long: `Remove the provisioned virtual environment. With --containers the
sandbox container for this checkout is removed as well.

Unless --force is specified, the command prompts for confirmation.

Examples:
  mugen-bootstrap clean
  mugen-bootstrap clean --force
  mugen-bootstrap clean --containers`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove without confirmation")
	cmd.Flags().BoolVar(&flags.containers, "containers", false, "Also remove the sandbox container")

	return cmd
}

// runClean removes the environment and optionally the sandbox.
func runClean(ctx context.Context, flags *cleanFlags) error {
	root, err := checkoutRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}

	venv := python.NewVenv(cfg.VenvPath(root))
	venvExists := venv.Exists()

	if !venvExists && !flags.containers {
		fmt.Printf("Nothing to clean — no environment at %s\n", venv.Dir)
		return nil
	}

	if !flags.force {
		confirmed, err := promptCleanConfirmation(venv.Dir, venvExists, flags.containers)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		if !confirmed {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	venvRemoved := false
	if venvExists {
		VerboseLog("Removing environment at %s", venv.Dir)
		if err := venv.Remove(); err != nil {
			return err
		}
		venvRemoved = true
	}

	sandboxRemoved := ""
	if flags.containers {
		name, err := removeSandbox(ctx, root)
		if err != nil {
			return err
		}
		sandboxRemoved = name
	}

	printCleanResult(venv.Dir, venvRemoved, sandboxRemoved)
	return nil
}

// removeSandbox removes the sandbox container for this checkout, if one
// exists. Returns the removed container's name, or "" when there was none.
func removeSandbox(ctx context.Context, root string) (string, error) {
	cli, err := sandbox.NewClient()
	if err != nil {
		return "", err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return "", err
	}

	info, err := sandbox.FindByCheckout(ctx, cli, root)
	if err != nil {
		return "", err
	}
	if info == nil {
		VerboseLog("No sandbox container for this checkout")
		return "", nil
	}

	VerboseLog("Removing sandbox %s (%s)", info.ContainerName, info.ContainerID[:12])
	// Use force=true to handle containers that might still be running.
	if err := sandbox.Remove(ctx, cli, info.ContainerID, true); err != nil {
		return "", err
	}
	return info.ContainerName, nil
}

// promptCleanConfirmation asks the user to confirm the clean operation.
// It reads a single line from stdin and checks for "y" or "yes".
func promptCleanConfirmation(venvDir string, venvExists, containers bool) (bool, error) {
	fmt.Println("About to clean this checkout:")
	if venvExists {
		fmt.Printf("  - environment at %s will be removed\n", venvDir)
	}
	if containers {
		fmt.Println("  - the sandbox container will be removed")
	}
	fmt.Print("\nContinue? [y/N] ")

	// bufio.Scanner handles different line endings across platforms
	// (LF on Unix, CRLF on Windows).
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}

	// If stdin is closed or an error occurred, treat it as "no".
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// printCleanResult outputs the clean result in text or JSON format.
func printCleanResult(venvDir string, venvRemoved bool, sandboxRemoved string) {
	if IsJSONOutput() {
		result := map[string]interface{}{
			"venvPath":    venvDir,
			"venvRemoved": venvRemoved,
		}
		if sandboxRemoved != "" {
			result["sandboxRemoved"] = sandboxRemoved
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if venvRemoved {
		fmt.Printf("Removed environment at %s\n", venvDir)
	}
	if sandboxRemoved != "" {
		fmt.Printf("Removed sandbox %s\n", sandboxRemoved)
	}
}
