package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations so operators can keep a readable config file.
type StructuredJSONConfig struct {
	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Replica struct {
			Path string `json:"path"`
		} `json:"replica,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		RetryCount     int      `json:"retry_count"`
		RetryWaitMin   Duration `json:"retry_wait_min"`
		RetryWaitMax   Duration `json:"retry_wait_max"`
	} `json:"adapter,omitempty"`

	Sync struct {
		Interval      Duration `json:"interval"`
		ProbeInterval Duration `json:"probe_interval"`
	} `json:"sync,omitempty"`

	Cache struct {
		APIDeadline Duration `json:"api_deadline"`
		ShellPath   string   `json:"shell_path"`
	} `json:"cache,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Storage: Storage{
			DB:      DB{DSN: jsonCfg.Storage.DB.DSN},
			Replica: Replica{Path: jsonCfg.Storage.Replica.Path},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			BaseURL:        jsonCfg.Adapter.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			RetryCount:     jsonCfg.Adapter.RetryCount,
			RetryWaitMin:   time.Duration(jsonCfg.Adapter.RetryWaitMin),
			RetryWaitMax:   time.Duration(jsonCfg.Adapter.RetryWaitMax),
		},
		Sync: Sync{
			Interval:      time.Duration(jsonCfg.Sync.Interval),
			ProbeInterval: time.Duration(jsonCfg.Sync.ProbeInterval),
		},
		Cache: Cache{
			APIDeadline: time.Duration(jsonCfg.Cache.APIDeadline),
			ShellPath:   jsonCfg.Cache.ShellPath,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
