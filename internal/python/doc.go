// Package python locates CPython interpreters and provisions virtual
// environments for the mugen-bootstrap CLI.
//
// Interpreter discovery shells out to candidate commands (python3.12,
// py -3.12, python3, ...) and parses their --version output, rather
// than inspecting registry keys or install directories. This uses the
// exact same resolution the user's shell would, including pyenv shims
// and the Windows py launcher.
//
// The version gate is exact-match on major.minor: when 3.12 is
// required, neither 3.11 nor 3.13 passes. This mirrors the original
// installer, which probed for one specific version and refused to
// continue with anything else.
//
// Virtual environments are always addressed through their own
// interpreter path (venv/bin/python or venv\Scripts\python.exe). There
// is no "activation" — every later step receives the explicit handle,
// so no step depends on ambient shell state.
package python
