// Package cli implements the sensorwatch command-line interface.
//
// Each command is a package-level cobra.Command registered from init. The
// RunE functions stay thin: they load config, build collaborators, and hand
// off to a xxxCommand function that takes its dependencies explicitly so it
// can be tested without a broker or a terminal.
//
// # Command Structure
//
//	sensorwatch watch         - Full-screen live dashboard
//	sensorwatch tail          - Live readings and alerts as plain lines
//	sensorwatch history       - One-shot fetch of historical readings
//	sensorwatch tags          - List sensor types and locations
//	sensorwatch config init   - Write a default .sensorwatch.yaml
//	sensorwatch config set    - Change one setting in place
//	sensorwatch config show   - Print the effective settings
//	sensorwatch version       - Build information
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) live on the root command.
// The filter flags (--sensor-type, --location, --from, --to) are shared by
// watch, tail and history through FilterFlags and AddFilterFlags.
//
// # Wiring
//
// newSession builds the MQTT transport, the connection state machine, the
// API client and the dashboard session from a validated config. watch adds
// the popup panel and toast tray behind a notification router; tail uses a
// line printer as its alert dispatcher instead.
package cli
