// Package config loads the optional TOML settings shared by the
// meta, valgol1m, and metabstrp CLIs: an opt-in execution step budget
// and output preferences. Absent a config file, every default matches
// the toolkit's specified behavior exactly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the toolkit's ambient configuration.
type Config struct {
	// Execution settings
	Execution struct {
		// MaxSteps bounds the number of fetch-dispatch cycles an MVM
		// or AVM run may execute before it is aborted as runaway. 0
		// disables the budget, matching the spec's default of no
		// watchdog.
		MaxSteps uint64 `toml:"max_steps"`
	} `toml:"execution"`

	// Trace settings
	Trace struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
	} `toml:"trace"`

	// Output settings
	Output struct {
		// TrimTrailingSpace strips trailing spaces from each line of
		// MVM output before it is written to stdout. Off by default:
		// the spec's output format makes no such guarantee and the
		// generated assembly's trailing spaces are significant to
		// byte-for-byte comparisons such as the bootstrap self-test.
		TrimTrailingSpace bool `toml:"trim_trailing_space"`
	} `toml:"output"`
}

// Default returns a Config whose values reproduce the spec's
// behavior exactly: no step budget, no tracing, no output
// post-processing.
func Default() *Config {
	return &Config{}
}

// ConfigPath returns the platform-specific config file path,
// creating its containing directory if necessary.
func ConfigPath() string {
	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "metac")

	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		dir = filepath.Join(home, ".config", "metac")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// Load loads configuration from the default config file, falling
// back to Default when it doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads configuration from path, falling back to Default
// when path doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
