package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the server API root used by the client.
	BaseURL string
	// RequestTimeout bounds one outbound attempt.
	RequestTimeout time.Duration
	// RetryCount is the maximum number of retries after transport
	// failures or 5xx responses.
	RetryCount int
	// RetryWaitMin is the initial backoff delay.
	RetryWaitMin time.Duration
	// RetryWaitMax caps the backoff delay.
	RetryWaitMax time.Duration
}

// ClientReplica contains local replica settings for the client.
type ClientReplica struct {
	// Path is the SQLite file path holding the local replica.
	Path string
}

// ClientSync contains sync scheduler settings.
type ClientSync struct {
	// Interval defines how often the background sync round runs.
	Interval time.Duration
	// ProbeInterval defines how often connectivity is probed while offline.
	ProbeInterval time.Duration
}

// ClientCache contains response-cache settings.
type ClientCache struct {
	// APIDeadline bounds the network leg of an API read.
	APIDeadline time.Duration
	// ShellPath is the offline navigation fallback document.
	ShellPath string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	Adapter ClientAdapter
	Replica ClientReplica
	Sync    ClientSync
	Cache   ClientCache
}

// GetClientConfig builds and validates a client-specific config view
// from the merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			RetryCount:     cfg.Adapter.RetryCount,
			RetryWaitMin:   cfg.Adapter.RetryWaitMin,
			RetryWaitMax:   cfg.Adapter.RetryWaitMax,
		},
		Replica: ClientReplica{Path: cfg.Storage.Replica.Path},
		Sync: ClientSync{
			Interval:      cfg.Sync.Interval,
			ProbeInterval: cfg.Sync.ProbeInterval,
		},
		Cache: ClientCache{
			APIDeadline: cfg.Cache.APIDeadline,
			ShellPath:   cfg.Cache.ShellPath,
		},
	}

	return clientCfg, clientCfg.validate()
}
