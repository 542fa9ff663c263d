package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/flagx"
	"github.com/dmitrijs2005/loginetl/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "15s" style
// strings or integer nanoseconds. Secrets (passphrase, AWS keys) are not
// read from the file; use the environment or .env for those.
type JsonConfig struct {
	QueueURL      string         `json:"queue_url"`
	QueueEndpoint string         `json:"queue_endpoint"`
	Region        string         `json:"region"`
	MaxMessages   int            `json:"max_messages"`
	WaitTime      timex.Duration `json:"wait_time"`
	ProbeAttempts int            `json:"probe_attempts"`
	ProbeDelay    timex.Duration `json:"probe_delay"`
	CipherMode    string         `json:"cipher_mode"`
	DatabaseDSN   string         `json:"database_dsn"`
	LogBackend    string         `json:"log_backend"`
	LogLevel      string         `json:"log_level"`
	LogFile       string         `json:"log_file"`
	RejectBucket  string         `json:"reject_bucket"`
}

// parseJson overlays the JSON file named by -c/-config, if any. Keys missing
// from the file leave the field unchanged.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", common.ErrInvalidConfig, path, err)
	}

	setString(&config.QueueURL, c.QueueURL)
	setString(&config.QueueEndpoint, c.QueueEndpoint)
	setString(&config.Region, c.Region)
	setString(&config.CipherMode, c.CipherMode)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFile, c.LogFile)
	setString(&config.RejectBucket, c.RejectBucket)

	if c.MaxMessages != 0 {
		config.MaxMessages = c.MaxMessages
	}
	if c.ProbeAttempts != 0 {
		config.ProbeAttempts = c.ProbeAttempts
	}
	if c.WaitTime.Duration != 0 {
		config.WaitTime = c.WaitTime.Duration
	}
	if c.ProbeDelay.Duration != 0 {
		config.ProbeDelay = c.ProbeDelay.Duration
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
