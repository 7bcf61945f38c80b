// Package config holds the small set of process-wide defaults a channel
// endpoint needs beyond what's carried in the channel name itself: where to
// log, how long to wait for a handshake, and how often the housekeeper
// sweeps for abandoned channels.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/cmn/fname"
	"github.com/arobinson/mpichan/cmn/jsp"
)

// Config is the channel runtime's tunable defaults. Load pre-populates every
// field from the constants below before reading the file, so fields a
// partial config file omits keep their defaults and a missing file degrades
// gracefully rather than failing to start; a field the file sets explicitly,
// even to its zero value, overrides the default.
type Config struct {
	LogDir              string   `json:"log_dir"`
	HandshakeTimeout    Duration `json:"handshake_timeout"`
	HousekeeperInterval Duration `json:"housekeeper_interval"`
	RegistryPath        string   `json:"registry_path"`
}

// Duration wraps time.Duration so config files can spell timeouts as
// "30s"/"5m" rather than raw nanosecond integers.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	s = s[1 : len(s)-1] // strip quotes
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

const (
	defaultHandshakeTimeout    = 0 // wait indefinitely, see ipc.WithHandshakeTimeout
	defaultHousekeeperInterval = 30 * time.Second

	// envLogDir overrides Config.LogDir, taking precedence over both the
	// compiled-in default and whatever the config file on disk says.
	envLogDir = "MPICHAN_LOG_DIR"
)

// HomeDir returns $HOME/.config/mpichan, creating it if necessary.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, fname.HomeConfigsDir, fname.HomeMpichan)
	if err := cos.CreateDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads the global config file out of dir (falling back to HomeDir if
// dir is empty), filling in any fields the file omits with compiled-in
// defaults. A missing config file is not an error.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = HomeDir(); err != nil {
			return nil, err
		}
	}
	c := &Config{
		LogDir:              dir,
		HandshakeTimeout:    Duration(defaultHandshakeTimeout),
		HousekeeperInterval: Duration(defaultHousekeeperInterval),
		RegistryPath:        filepath.Join(dir, fname.Registry),
	}
	path := filepath.Join(dir, fname.GlobalConfig)
	if _, err := jsp.LoadMeta(path, c); err != nil {
		return nil, err
	}
	c.LogDir = cos.GetEnvOrDefault(envLogDir, c.LogDir)
	return c, nil
}

// Save persists c to dir/mpichan.json.
func Save(dir string, c *Config) error {
	return jsp.SaveMeta(filepath.Join(dir, fname.GlobalConfig), c)
}
