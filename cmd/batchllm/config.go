// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davetashner/batchllm/internal/config"
)

// Config command flags.
var configGlobal bool

// configCmd is the parent command for config subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify batchllm configuration",
	Long: `View and modify batchllm configuration.

Batchllm reads configuration from .batchllm.yaml in the working directory.
A global config at ~/.config/batchllm/config.yaml provides defaults, and
BATCHLLM_* environment variables override both.

Note: config set does a YAML round-trip and will not preserve comments.
If you need to keep comments, edit the file directly.`,
}

// configShowCmd prints the merged configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// configValidateCmd checks the merged configuration.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the merged configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

// configGetCmd retrieves a configuration value by dot-notation key path.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by dot-notation key path.

Examples:
  batchllm config get model
  batchllm config get stuff.document_variable_name
  batchllm config get --global provider`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Values are converted to the type of the key (number, bool or string);
stop takes a comma-separated list. By default, writes to .batchllm.yaml in the current
directory. Use --global to write to ~/.config/batchllm/config.yaml.

Examples:
  batchllm config set provider anthropic
  batchllm config set batch_size 10
  batchllm config set stop "###,END"
  batchllm config set --global retry_transient true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configListCmd lists all configuration values with their source.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Long: `List every set configuration value, annotated with the layer it comes
from: global, project or env. Later layers override earlier ones.`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

func init() {
	configGetCmd.Flags().BoolVar(&configGlobal, "global", false, "use global config (~/.config/batchllm/config.yaml)")
	configSetCmd.Flags().BoolVar(&configGlobal, "global", false, "write to global config (~/.config/batchllm/config.yaml)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}

// resetConfigFlags resets config command flags for testing.
func resetConfigFlags() {
	configGlobal = false
	if f := configGetCmd.Flags().Lookup("global"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	if f := configSetCmd.Flags().Lookup("global"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadLayered(".")
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading config")
	}
	var buf bytes.Buffer
	if err := config.Write(&buf, cfg); err != nil {
		return exitError(ExitOutputFailed, err, "formatting config")
	}
	return emit(cmd, "", buf.Bytes())
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadLayered(".")
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading config")
	}
	if err := config.Validate(cfg); err != nil {
		return exitError(ExitInvalidArgs, err, "invalid config")
	}
	if _, err := cfg.EngineConfig(); err != nil {
		return exitError(ExitInvalidArgs, err, "invalid config")
	}
	_, _ = color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	keyPath := args[0]
	if err := config.ValidateKeyPath(keyPath); err != nil {
		return exitError(ExitInvalidArgs, err, "config get")
	}

	var cfg *config.Config
	var err error
	if configGlobal {
		cfg, err = config.LoadGlobal()
	} else {
		cfg, err = config.LoadLayered(".")
	}
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading config")
	}

	val, err := config.GetValue(cfg, keyPath)
	if err != nil {
		return exitError(ExitInvalidArgs, err, "config get")
	}
	return printValue(cmd, val)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	keyPath := args[0]
	rawValue := args[1]

	if err := config.ValidateKeyPath(keyPath); err != nil {
		return exitError(ExitInvalidArgs, err, "config set")
	}

	targetPath := filepath.Join(".", config.FileName)
	if configGlobal {
		targetPath = config.GlobalConfigPath()
	}

	data, err := config.LoadRaw(cmdFS, targetPath)
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading config file")
	}
	if err := config.SetValue(data, keyPath, rawValue); err != nil {
		return exitError(ExitInvalidArgs, err, "setting value")
	}

	// Round-trip validate before writing.
	roundTrip, err := yaml.Marshal(data)
	if err != nil {
		return exitError(ExitInvalidArgs, err, "marshaling config")
	}
	var validCfg config.Config
	if err := yaml.Unmarshal(roundTrip, &validCfg); err != nil {
		return exitError(ExitInvalidArgs, err, "invalid config after set")
	}
	if err := config.Validate(&validCfg); err != nil {
		return exitError(ExitInvalidArgs, err, "invalid config after set")
	}

	if err := config.WriteRaw(cmdFS, targetPath, data); err != nil {
		return exitError(ExitOutputFailed, err, "writing config")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", keyPath, rawValue)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading global config")
	}
	projectCfg, err := config.Load(".")
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading project config")
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading environment")
	}

	type entry struct {
		value  any
		source string
	}
	seen := make(map[string]entry)
	for _, layer := range []struct {
		source string
		cfg    *config.Config
	}{
		{"global", globalCfg},
		{"project", projectCfg},
		{"env", envCfg},
	} {
		m, err := config.ToMap(layer.cfg)
		if err != nil {
			return exitError(ExitInvalidArgs, err, "flattening %s config", layer.source)
		}
		for k, v := range config.FlattenMap(m, "") {
			seen[k] = entry{value: v, source: layer.source}
		}
	}

	if len(seen) == 0 {
		_, _ = fmt.Fprintln(w, "No configuration set.")
		_, _ = fmt.Fprintln(w, "Run 'batchllm config set <key> <value>' to set values.")
		return nil
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := seen[k]
		_, _ = fmt.Fprintf(w, "%s = %v %s\n", k, e.value, formatSource(e.source))
	}
	return nil
}

// printValue outputs a value: scalars as plain text, maps/slices as YAML.
func printValue(cmd *cobra.Command, val any) error {
	switch v := val.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}

var sourceColors = map[string]*color.Color{
	"global":  color.New(color.FgCyan),
	"project": color.New(color.FgGreen),
	"env":     color.New(color.FgYellow),
}

// formatSource returns a colorized source annotation.
func formatSource(source string) string {
	if c, ok := sourceColors[source]; ok {
		return c.Sprintf("(%s)", source)
	}
	return fmt.Sprintf("(%s)", source)
}
