package sandbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// TestBuildParseRoundTrip verifies sandbox metadata survives the trip
// through Docker labels.
func TestBuildParseRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	labels := BuildLabels(&model.SandboxInfo{
		CheckoutPath:  "/home/user/mugen-webui",
		PythonVersion: "3.12",
		CreatedAt:     created,
	})

	assert.Equal(t, ManagedByValue, labels[LabelManagedBy])

	info, err := ParseLabels(labels)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/mugen-webui", info.CheckoutPath)
	assert.Equal(t, "3.12", info.PythonVersion)
	assert.Equal(t, created, info.CreatedAt)
}

// TestParseLabelsRejectsForeignContainers verifies containers not
// created by this tool are rejected rather than misattributed.
func TestParseLabelsRejectsForeignContainers(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
	}{
		{name: "no labels", labels: map[string]string{}},
		{
			name:   "other tool",
			labels: map[string]string{LabelManagedBy: "someone-else"},
		},
		{
			name:   "missing checkout",
			labels: map[string]string{LabelManagedBy: ManagedByValue, LabelPythonVersion: "3.12"},
		},
		{
			name:   "missing python version",
			labels: map[string]string{LabelManagedBy: ManagedByValue, LabelCheckout: "/srv/mugen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLabels(tt.labels)
			assert.Error(t, err)
		})
	}
}

// TestParseLabelsToleratesBadTimestamp verifies a malformed created-at
// label downgrades to a zero time instead of hiding the sandbox.
func TestParseLabelsToleratesBadTimestamp(t *testing.T) {
	info, err := ParseLabels(map[string]string{
		LabelManagedBy:     ManagedByValue,
		LabelCheckout:      "/srv/mugen",
		LabelPythonVersion: "3.12",
		LabelCreatedAt:     "yesterday",
	})
	require.NoError(t, err)
	assert.True(t, info.CreatedAt.IsZero())
}

// TestContainerName verifies name derivation and sanitization.
func TestContainerName(t *testing.T) {
	tests := []struct {
		name     string
		checkout string
		want     string
	}{
		{name: "plain", checkout: "/home/user/mugen-webui", want: "mugen-sandbox-mugen-webui"},
		{name: "windows path", checkout: `C:\src\mugen webui`, want: "mugen-sandbox-mugen-webui"},
		{name: "dotted", checkout: "/srv/checkouts/v1.2", want: "mugen-sandbox-v1.2"},
		{name: "all invalid", checkout: "/tmp/---", want: "mugen-sandbox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerName("mugen-sandbox", tt.checkout))
		})
	}
}
