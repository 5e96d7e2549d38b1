// Package gitrepo provides Git submodule operations for the
// mugen-bootstrap CLI.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Matches go-git's limited submodule support poorly anyway
//
// The Manager struct provides init/update/status operations over the
// checkout's submodules. Init and update are both idempotent, so
// re-running the bootstrap on an already-synchronized checkout is safe.
package gitrepo
