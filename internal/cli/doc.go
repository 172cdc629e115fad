// Package cli defines the Cobra command tree for the craftapp CLI. Each file
// in this package registers one top-level command (validate, inspect, init,
// etc.) with the root command. Command implementations delegate to internal
// packages for manifest loading and scaffolding and only handle flag parsing,
// output formatting, and exit codes.
package cli
