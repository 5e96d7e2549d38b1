package port

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// occupyPort binds a TCP listener on an OS-assigned port and returns
// the port number. The listener is released when the test ends.
func occupyPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	return listener.Addr().(*net.TCPAddr).Port
}

// TestIsAvailable verifies a bound port reads as unavailable and an
// OS-assigned free port reads as available.
func TestIsAvailable(t *testing.T) {
	s := NewScanner()

	bound := occupyPort(t)
	assert.False(t, s.IsAvailable(bound), "bound port should be unavailable")

	// Find a free port by binding and immediately releasing it.
	probe, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	free := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	assert.True(t, s.IsAvailable(free), "released port should be available")
}

// TestChoosePrefersFreePreferred verifies the preferred port wins when
// it is free.
func TestChoosePrefersFreePreferred(t *testing.T) {
	s := NewScanner()

	probe, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	free := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	got, err := s.Choose(free, 10)
	require.NoError(t, err)
	assert.Equal(t, free, got)
}

// TestChooseSkipsBoundPreferred verifies the scan moves past a bound
// preferred port to the next free one.
func TestChooseSkipsBoundPreferred(t *testing.T) {
	s := NewScanner()
	bound := occupyPort(t)

	got, err := s.Choose(bound, 50)
	require.NoError(t, err)
	assert.Greater(t, got, bound)
	assert.True(t, s.IsAvailable(got))
}

// TestChooseExhaustedRange verifies the error path when every port in
// the scan window is taken.
func TestChooseExhaustedRange(t *testing.T) {
	s := NewScanner()
	bound := occupyPort(t)

	// Width 0 limits the scan to exactly the bound port.
	_, err := s.Choose(bound, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%d-%d", bound, bound))
}

// TestChooseClampsAt65535 verifies the scan window is clamped to the
// valid port range.
func TestChooseClampsAt65535(t *testing.T) {
	s := NewScanner()

	// Either outcome (found or exhausted) is fine; the call just must
	// not probe past 65535 or panic.
	port, err := s.Choose(65534, 100)
	if err == nil {
		assert.LessOrEqual(t, port, 65535)
	}
}
