package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensorwatch/internal/config"
	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the sensorwatch config file",
	Long: `Create, inspect and edit .sensorwatch.yaml.

Settings can also be overridden with SENSORWATCH_* environment variables,
e.g. SENSORWATCH_STREAM_URL or SENSORWATCH_VIEW_GRID_PAGE_SIZE.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	Long: `Write .sensorwatch.yaml in the current directory (or the global config
with --global) filled with the default settings.

Examples:
  sensorwatch config init
  sensorwatch config init --global
  sensorwatch config init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileName
		if configInitGlobal {
			home, err := os.UserHomeDir()
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					"Couldn't find your home directory", "Use --config to pick a path instead.")
			}
			path = filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile)
		}
		if Config() != "" {
			path = Config()
		}
		return configInitCommand(cmd.OutOrStdout(), path, configInitForce)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: `Change one setting in the active config file, keeping its comments.
Keys use dots for nesting.

Examples:
  sensorwatch config set stream_url ws://broker.local:8080/mqtt
  sensorwatch config set view.grid_page_size 4
  sensorwatch config set stream.reconnect_delay 2s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), Config(), args[0], args[1])
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the settings sensorwatch will use after merging the config file,
defaults and environment overrides.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), Config())
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write the global config in ~/.config/sensorwatch")
	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func configInitCommand(out io.Writer, path string, force bool) error {
	if err := config.Write(path, config.DefaultConfig(), force); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	return nil
}

func configSetCommand(out io.Writer, explicit, key, value string) error {
	path, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'sensorwatch config init' first.")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}

	// Reject edits that leave the file unusable.
	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(out, "%s %s updated, but the config no longer validates\n",
			ui.WarningStyle().Render(ui.SymbolWarning), path)
		return err
	}

	fmt.Fprintf(out, "%s Set %s = %s in %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value, path)
	return nil
}

func configShowCommand(out io.Writer, explicit string) error {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}
	fmt.Fprintf(out, "# source: %s\n", source)

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
