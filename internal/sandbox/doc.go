// Package sandbox manages Docker-based bootstrap sandboxes.
//
// A sandbox is a long-lived container built from an interpreter image
// (python:<version>-slim) with the checkout bind-mounted at /workspace.
// It exists for hosts where the required Python version is not
// installed: the venv and pip steps run inside the container instead,
// and the run command execs the webui there.
//
// All sandbox state is persisted via Docker container labels (mugen.*
// prefix) — there is no state file on disk. Discovery, stop, and
// removal go through the Docker Engine SDK with label filtering;
// container creation and command execution shell out to the docker CLI,
// whose run/exec flag surface is a better fit than hand-building
// HostConfig structs.
package sandbox
