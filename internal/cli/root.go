package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool

	// jsonFlag is bound by commands that support --json.
	jsonFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "sensorwatch",
	Short: "Live terminal dashboard for sensor readings and alerts",
	Long: `sensorwatch subscribes to a message broker for live sensor readings and
alerts, loads history from the sensor API, and charts both in the terminal.

Examples:
  sensorwatch watch
  sensorwatch watch --sensor-type temperature
  sensorwatch tail --location kitchen
  sensorwatch history --from 2024-05-01T00:00:00Z --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if verbose {
			_ = os.Setenv(logger.DebugEnv, "1")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .sensorwatch.yaml, then ~/.config/sensorwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(os.Stderr, "%s Unknown command %q\n\n  Run 'sensorwatch --help' to see what's available.\n",
				ui.SymbolFail, name)
			os.Exit(1)
		}
	}

	if jsonFlag {
		_ = WriteJSONFromError(os.Stdout, err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, err.Error())
	if !strings.HasSuffix(err.Error(), "\n") {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(1)
}

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the quoted name out of cobra's
// `unknown command "foo" for "sensorwatch"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
