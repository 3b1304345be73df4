// Package commands defines the sessiongate CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init     Ensure a device identity and establish a platform session
//   - status   Show the stored session and device identity
//   - logout   End the session on the platform and forget it locally
//   - device   Show or reset the device identity
//
// # Configuration
//
// Settings come from built-in defaults, then the YAML file named by --config
// or SESSIONGATE_CONFIG, then SESSIONGATE_* environment variables, then
// flags. The root command builds the dependency graph (stores, platform
// client, solvers, services) before any subcommand runs.
package commands
