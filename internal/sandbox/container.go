// container.go implements sandbox container lifecycle operations:
// provisioning, discovery, exec, stop, and removal.
package sandbox

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// WorkspaceMount is where the checkout is bind-mounted inside a sandbox.
const WorkspaceMount = "/workspace"

// VenvDir is the virtual environment path inside a sandbox. It lives
// outside the bind mount on purpose: a venv created by a Linux
// container would be unusable on the host anyway, and keeping it out of
// the checkout avoids clobbering a host-created ./venv.
const VenvDir = "/opt/venv"

// VenvPython is the interpreter path of the sandbox's environment.
const VenvPython = VenvDir + "/bin/python"

// ProvisionOptions describes a sandbox to create.
type ProvisionOptions struct {
	// Image is the interpreter image, e.g. "python:3.12-slim".
	Image string

	// Name is the container name.
	Name string

	// CheckoutPath is the absolute host path bind-mounted at WorkspaceMount.
	CheckoutPath string

	// PythonVersion is the major.minor version recorded in the labels.
	PythonVersion string

	// PublishPort, when non-zero, publishes the given container port on
	// the same host port so the webui served from the sandbox is
	// reachable from the host browser.
	PublishPort int
}

// Provision creates and starts a sandbox container in the background.
//
// The container runs "sleep infinity" as its main process so it stays
// alive between exec invocations. Creation shells out to "docker run":
// the image is pulled implicitly when absent, and the CLI flag surface
// (labels, bind mount, workdir) stays readable compared to hand-built
// HostConfig structs.
func Provision(ctx context.Context, opts ProvisionOptions) (*model.SandboxInfo, error) {
	info := &model.SandboxInfo{
		ContainerName: opts.Name,
		Image:         opts.Image,
		CheckoutPath:  opts.CheckoutPath,
		PythonVersion: opts.PythonVersion,
		CreatedAt:     time.Now().UTC(),
	}

	args := []string{"run", "-d", "--name", opts.Name}
	for k, v := range BuildLabels(info) {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args,
		"-v", opts.CheckoutPath+":"+WorkspaceMount,
		"-w", WorkspaceMount,
	)
	if opts.PublishPort > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:%d", opts.PublishPort, opts.PublishPort))
	}
	args = append(args, opts.Image, "sleep", "infinity")

	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker run failed for sandbox %q: %s",
				opts.Name, strings.TrimSpace(string(output))),
			err,
		)
	}

	// docker run -d prints the new container ID on stdout.
	info.ContainerID = strings.TrimSpace(string(output))
	info.Status = "running"
	return info, nil
}

// Exec runs a command inside a running sandbox via "docker exec",
// streaming its output to the given writers. The command's own console
// output is the only diagnostics — no additional capture layer.
// Environment variables in env are injected via -e flags, sorted for
// deterministic invocations.
func Exec(ctx context.Context, containerName string, env map[string]string, stdout, stderr io.Writer, cmdArgs ...string) error {
	args := []string{"exec"}
	for _, k := range sortedKeys(env) {
		args = append(args, "-e", k+"="+env[k])
	}
	args = append(args, containerName)
	args = append(args, cmdArgs...)

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker exec failed in sandbox %q: %s",
				containerName, strings.Join(cmdArgs, " ")),
			err,
		)
	}
	return nil
}

// ListManaged queries the Docker daemon for all containers carrying the
// mugen-bootstrap management label, including stopped ones. Filtering
// happens server-side via the Docker API.
func ListManaged(ctx context.Context, cli *Client) ([]model.SandboxInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.SandboxInfo, 0, len(containers))
	for _, c := range containers {
		info, err := ParseLabels(c.Labels)
		if err != nil {
			// A container matching the filter but failing to parse has
			// been tampered with; skip it rather than failing the listing.
			continue
		}
		fillFromContainer(info, c)
		result = append(result, *info)
	}

	return result, nil
}

// FindByCheckout returns the sandbox serving the given checkout path,
// or nil when none exists.
func FindByCheckout(ctx context.Context, cli *Client, checkoutPath string) (*model.SandboxInfo, error) {
	sandboxes, err := ListManaged(ctx, cli)
	if err != nil {
		return nil, err
	}
	for i := range sandboxes {
		if sandboxes[i].CheckoutPath == checkoutPath {
			return &sandboxes[i], nil
		}
	}
	return nil, nil
}

// Start starts a stopped sandbox container via the Docker SDK.
func Start(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start sandbox %q", containerID),
			err,
		)
	}
	return nil
}

// Stop stops a running sandbox container gracefully via the Docker SDK,
// using the daemon's default timeout before a SIGKILL.
func Stop(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop sandbox %q", containerID),
			err,
		)
	}
	return nil
}

// Remove removes a sandbox container via the Docker SDK. With force,
// a running container is killed first.
func Remove(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove sandbox %q", containerID),
			err,
		)
	}
	return nil
}

// ContainerName derives a stable sandbox name from the configured
// prefix and the checkout directory's base name. Characters Docker
// rejects in container names are replaced with hyphens.
func ContainerName(prefix, checkoutPath string) string {
	base := checkoutPath
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	name := strings.Trim(b.String(), "-.")
	if name == "" {
		return prefix
	}
	return prefix + "-" + name
}

// sortedKeys returns the map keys in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fillFromContainer copies runtime fields from a Docker API container
// struct onto parsed sandbox metadata. Docker returns names with a
// leading "/" that is stripped for display.
func fillFromContainer(info *model.SandboxInfo, c types.Container) {
	info.ContainerID = c.ID
	info.Image = c.Image
	info.Status = c.State
	if len(c.Names) > 0 {
		info.ContainerName = strings.TrimPrefix(c.Names[0], "/")
	}
}
