// Package cli — settings.go implements the "mugen-bootstrap settings"
// command group.
//
// The webui persists its user preferences in a JSON settings file in
// the checkout (settings.json by default). This command group reads and
// writes that file without launching the webui: "show" prints the
// current values, "set" updates known keys, and "reset" restores the
// defaults.
package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mugen-webui/mugen-bootstrap/internal/config"
	"github.com/mugen-webui/mugen-bootstrap/internal/model"
	"github.com/mugen-webui/mugen-bootstrap/internal/settings"
)

// NewSettingsCommand creates the "settings" cobra command group.
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the webui settings file",
		Long: `Read and write the webui's JSON settings file without launching the
webui. Unknown keys are ignored on write so a typo never pollutes the
settings file.

Examples:
  mugen-bootstrap settings show
  mugen-bootstrap settings set beat_interval=8
  mugen-bootstrap settings set beat_open=false beat_interval=2
  mugen-bootstrap settings reset`,
	}

	cmd.AddCommand(newSettingsShowCommand())
	cmd.AddCommand(newSettingsSetCommand())
	cmd.AddCommand(newSettingsResetCommand())

	return cmd
}

// settingsStore opens the settings store for the current checkout.
func settingsStore() (*settings.Store, error) {
	root, err := checkoutRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, err
	}
	return settings.NewStore(cfg.SettingsPath(root)), nil
}

// newSettingsShowCommand creates the "settings show" subcommand.
func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settingsStore()
			if err != nil {
				return err
			}
			values, err := store.Load()
			if err != nil {
				return err
			}
			printSettings(values)
			return nil
		},
	}
}

// newSettingsSetCommand creates the "settings set" subcommand.
func newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>=<value> [<key>=<value>...]",
		Short: "Update settings values",
		Long: `Update one or more settings. Values are parsed as JSON where
possible (true, 4, 1.5) and fall back to plain strings otherwise.
Keys not present in the settings file are skipped, not added.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseSettingPairs(args)
			if err != nil {
				return err
			}

			store, err := settingsStore()
			if err != nil {
				return err
			}

			skipped, err := store.Update(updates)
			if err != nil {
				return err
			}
			for _, key := range skipped {
				fmt.Printf("Skipped unknown key %q\n", key)
			}

			values, err := store.Load()
			if err != nil {
				return err
			}
			printSettings(values)
			return nil
		},
	}
}

// newSettingsResetCommand creates the "settings reset" subcommand.
func newSettingsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settingsStore()
			if err != nil {
				return err
			}
			if err := store.Reset(); err != nil {
				return err
			}
			printSettings(settings.Defaults())
			return nil
		},
	}
}

// parseSettingPairs parses "key=value" arguments. Values are decoded as
// JSON when they parse (booleans, numbers, quoted strings, arrays) and
// taken verbatim as strings otherwise.
func parseSettingPairs(args []string) (map[string]any, error) {
	updates := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid setting %q: expected key=value", arg))
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		updates[key] = value
	}
	return updates, nil
}

// printSettings outputs the settings in text or JSON format.
func printSettings(values map[string]any) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(values, "", "  ")
		fmt.Println(string(data))
		return
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("%-16s %v\n", key, values[key])
	}
}
