// Package port implements listen-port selection for the webui launcher.
//
// The webui binds one HTTP port (gradio defaults to 7860). Before
// launching, the run command verifies the preferred port is free and
// otherwise picks the next free one, so a second checkout's webui does
// not collide with an already-running instance.
package port

import (
	"fmt"
	"net"
)

// Scanner checks whether specific ports are available on the host machine.
//
// It uses the operating system's network stack (net.Listen) to determine
// if a port is free. This is the most reliable method because it asks
// the OS directly, rather than parsing /proc/net/* or relying on
// external commands like `lsof` or `ss` which may require elevated
// permissions.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so that future options (e.g., bind address) can
// be added without breaking the API.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsAvailable checks whether a single TCP port is free on the host.
//
// It attempts net.Listen("tcp", ":port"); if the bind succeeds the port
// is available and the probe listener is closed immediately. Binding on
// all interfaces matches how gradio publishes its server, avoiding
// false positives from loopback-only checks.
func (s *Scanner) IsAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	defer func() { _ = listener.Close() }()
	return true
}

// Choose returns the preferred port when it is free, or the first free
// port after it within the given scan width.
//
// The search is sequential from preferred upward, so the same free port
// is selected consistently across runs.
func (s *Scanner) Choose(preferred, width int) (int, error) {
	last := preferred + width
	if last > 65535 {
		last = 65535
	}
	for port := preferred; port <= last; port++ {
		if s.IsAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free TCP port in range %d-%d", preferred, last)
}
