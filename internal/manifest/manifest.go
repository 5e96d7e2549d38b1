// Package manifest parses requirements.txt dependency manifests.
//
// The parser exists for reporting only (doctor and status show what the
// checkout declares). Installation never goes through it — the manifest
// file is always handed to pip wholesale, so pip's full requirements
// syntax keeps working even for constructs this parser only carries as
// raw lines.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// Entry is one logical line of a requirements manifest.
type Entry struct {
	// Raw is the logical line as written (continuations joined,
	// comments stripped).
	Raw string

	// Name is the bare distribution name extracted from a package
	// specifier. Empty for option lines.
	Name string

	// IsOption is true for lines that are pip options rather than
	// package specifiers (e.g. "-r other.txt", "-e .", "--index-url").
	IsOption bool
}

// Load reads and parses the manifest at the given path.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read manifest %s", path), err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses manifest content: one package specifier per line, with
// "#" comments, blank lines, backslash line continuations, and pip
// option lines.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var pending string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := stripComment(scanner.Text())

		// Backslash continuation: accumulate into the pending logical line.
		if strings.HasSuffix(line, `\`) {
			pending += strings.TrimSpace(strings.TrimSuffix(line, `\`)) + " "
			continue
		}

		logical := strings.TrimSpace(pending + strings.TrimSpace(line))
		pending = ""
		if logical == "" {
			continue
		}

		entry := Entry{Raw: logical}
		if strings.HasPrefix(logical, "-") {
			entry.IsOption = true
		} else {
			entry.Name = specifierName(logical)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan manifest: %w", err)
	}

	// A trailing continuation with no following line still counts.
	if trimmed := strings.TrimSpace(pending); trimmed != "" {
		entry := Entry{Raw: trimmed}
		if strings.HasPrefix(trimmed, "-") {
			entry.IsOption = true
		} else {
			entry.Name = specifierName(trimmed)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Names returns the distribution names of all package entries, in
// manifest order.
func Names(entries []Entry) []string {
	var names []string
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names
}

// stripComment removes a "#" comment from a line. Mid-line comments
// require preceding whitespace, matching pip's behavior — a "#" inside
// a URL fragment is not a comment.
func stripComment(line string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return ""
	}
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimRight(line, " \t")
}

// specifierName extracts the distribution name from a specifier like
// "gradio[oauth]>=4.0,<5; python_version >= '3.10'". The name ends at
// the first extras bracket, version operator, space, or marker
// separator.
func specifierName(spec string) string {
	if idx := strings.IndexAny(spec, "[<>=!~;@ "); idx >= 0 {
		return strings.TrimSpace(spec[:idx])
	}
	return spec
}
