// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package config

// validate checks that the final merged [StructuredConfig] satisfies
// the invariants the server needs at startup.
func (cfg *StructuredConfig) validate() error {
	// The structured config is shared by both binaries; binary-specific
	// requirements are validated by the per-binary views.
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Replica.Path == "" {
		return ErrInvalidReplicaConfigs
	}

	if cfg.Adapter.BaseURL == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval == 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
