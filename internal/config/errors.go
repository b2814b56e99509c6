package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing base URL or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidReplicaConfigs indicates invalid local replica settings
	// (for example, an empty replica path).
	ErrInvalidReplicaConfigs = errors.New("invalid replica configuration")
	// ErrInvalidSyncConfigs indicates invalid sync scheduler settings
	// (for example, a zero sync interval).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
