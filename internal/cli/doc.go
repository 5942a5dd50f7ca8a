// Package cli defines the Cobra command tree for the splitbuild CLI. Each file
// in this package registers one top-level command (build, verify, config,
// version) with the root command. Commands delegate to internal packages and
// only handle flags, output and exit status.
package cli
