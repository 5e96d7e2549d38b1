// Package settings manages the webui's settings.json store.
//
// The webui persists its UI state (accordion open flags, beat interval)
// in a flat JSON object in the checkout root. The settings command
// exposes it for inspection and scripted edits.
//
// Files are parsed through github.com/tidwall/jsonc so hand-edited
// files with comments or trailing commas still load; saving always
// writes plain indented JSON, which is what the webui itself does.
//
// The defaults-merge behavior matches the webui: loading a file that
// lacks newly-introduced keys fills them in from the defaults and
// persists the merged result, so older settings files upgrade in place.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/jsonc"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// Defaults returns the built-in settings the webui starts from.
func Defaults() map[string]any {
	return map[string]any{
		"beat_open":     true,
		"beat_interval": float64(4),
	}
}

// Store manages one settings file.
type Store struct {
	// Path is the settings file location, usually
	// <checkout>/settings.json.
	Path string
}

// NewStore creates a Store for the given path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the settings file, filling in any missing default keys.
//
// A missing file is not an error: the defaults are written out and
// returned, matching the webui's first-launch behavior. When the loaded
// file lacks keys that exist in the defaults, the merged result is
// persisted immediately so the file on disk stays complete.
func (s *Store) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := Defaults()
			if saveErr := s.Save(defaults); saveErr != nil {
				return nil, saveErr
			}
			return defaults, nil
		}
		return nil, model.WrapCLIError(model.ExitSettingsError,
			fmt.Sprintf("failed to read settings file %s", s.Path), err)
	}

	loaded := make(map[string]any)
	if err := json.Unmarshal(jsonc.ToJSON(data), &loaded); err != nil {
		return nil, model.WrapCLIError(model.ExitSettingsError,
			fmt.Sprintf("failed to parse settings file %s", s.Path), err)
	}

	updated := false
	for key, value := range Defaults() {
		if _, ok := loaded[key]; !ok {
			loaded[key] = value
			updated = true
		}
	}
	if updated {
		if err := s.Save(loaded); err != nil {
			return nil, err
		}
	}

	return loaded, nil
}

// Save writes the settings as indented JSON.
func (s *Store) Save(values map[string]any) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitSettingsError, "failed to encode settings", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return model.WrapCLIError(model.ExitSettingsError,
			fmt.Sprintf("failed to write settings file %s", s.Path), err)
	}
	return nil
}

// Update applies the given key/value updates to the stored settings.
//
// Only keys that already exist in the settings are applied; unknown
// keys are skipped and reported back, mirroring the webui's behavior
// of refusing to invent settings. The skipped list is sorted for
// deterministic output.
func (s *Store) Update(updates map[string]any) (skipped []string, err error) {
	current, err := s.Load()
	if err != nil {
		return nil, err
	}

	changed := false
	for key, value := range updates {
		if _, ok := current[key]; !ok {
			skipped = append(skipped, key)
			continue
		}
		current[key] = value
		changed = true
	}
	sort.Strings(skipped)

	if changed {
		if err := s.Save(current); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// Reset rewrites the settings file with the defaults.
func (s *Store) Reset() error {
	return s.Save(Defaults())
}
