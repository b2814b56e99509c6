// Package config loads the application configuration from environment
// variables, command-line flags, and an optional JSON file, merging the
// sources in that order (later sources fill gaps, never overwrite).
//
// The main entry points are [GetStructuredConfig] for the server runtime
// and [GetClientConfig] for the client daemon.
package config
