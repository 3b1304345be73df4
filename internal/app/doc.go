// Package app wires application dependencies for the CLI.
//
// Config is assembled from defaults, an optional YAML file, SESSIONGATE_*
// environment variables and flags. NewWire turns it into concrete stores, the
// platform repository, the solver registry and the services, exposed on Wire
// for commands to use.
package app
