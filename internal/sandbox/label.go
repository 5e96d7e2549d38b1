// label.go defines the Docker label schema that persists sandbox
// metadata. Labels are the sole persistence mechanism — the status and
// clean commands reconstruct everything from Docker API queries.
package sandbox

import (
	"fmt"
	"time"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// Label key constants. All keys share the "mugen." prefix to namespace
// them away from labels set by other tools.
const (
	// LabelPrefix is the common prefix for all mugen-bootstrap labels.
	LabelPrefix = "mugen."

	// LabelManagedBy identifies containers managed by mugen-bootstrap.
	// This is the primary label used for filtering and discovery.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelCheckout stores the absolute host path of the checkout the
	// sandbox serves.
	LabelCheckout = LabelPrefix + "checkout"

	// LabelPythonVersion stores the major.minor interpreter version the
	// sandbox provides.
	LabelPythonVersion = LabelPrefix + "python-version"

	// LabelCreatedAt stores the RFC3339 timestamp of sandbox creation.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the fixed value of the LabelManagedBy label.
const ManagedByValue = "mugen-bootstrap"

// BuildLabels constructs the label set for a new sandbox container.
func BuildLabels(info *model.SandboxInfo) map[string]string {
	return map[string]string{
		LabelManagedBy:     ManagedByValue,
		LabelCheckout:      info.CheckoutPath,
		LabelPythonVersion: info.PythonVersion,
		LabelCreatedAt:     info.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ParseLabels reconstructs sandbox metadata from a container's labels.
// The checkout path and python version are required; a container
// missing them was not created by this tool (or by a compatible
// version) and is reported as unparseable rather than guessed at.
func ParseLabels(labels map[string]string) (*model.SandboxInfo, error) {
	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf("container is not managed by %s", ManagedByValue)
	}

	checkout := labels[LabelCheckout]
	if checkout == "" {
		return nil, fmt.Errorf("missing required label %s", LabelCheckout)
	}

	version := labels[LabelPythonVersion]
	if version == "" {
		return nil, fmt.Errorf("missing required label %s", LabelPythonVersion)
	}

	info := &model.SandboxInfo{
		CheckoutPath:  checkout,
		PythonVersion: version,
		Labels:        labels,
	}

	// created-at tolerates absence and parse failures: it is advisory
	// display data and a missing timestamp should not hide a sandbox
	// from listing or cleanup.
	if raw := labels[LabelCreatedAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			info.CreatedAt = ts
		}
	}

	return info, nil
}
