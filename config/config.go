// Package config loads tas's settings from a TOML file, the way the
// teacher's emulator loads its own config (spec.md §6 doesn't mandate a
// config file; SPEC_FULL §E6 adds one for the knobs spec.md §3/§5 leave
// to the implementation: PC width, cycle budget, halt behavior, trace).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/tangle-project/tangle/isa"
)

// Config is tas's top-level configuration, loaded from .tas.toml.
type Config struct {
	Assembler struct {
		PCWidth int `toml:"pc_width"`
	} `toml:"assembler"`

	CPU struct {
		MaxCycles uint64 `toml:"max_cycles"`
		// HaltOnSelfBranch is loaded and saved but not read by the VM,
		// which always halts on a taken j to its own address.
		HaltOnSelfBranch bool `toml:"halt_on_self_branch"`
	} `toml:"cpu"`

	Display struct {
		NumberFormat string `toml:"number_format"` // hex, dec, both
	} `toml:"display"`

	Trace struct {
		Enabled      bool   `toml:"enabled"`
		OutputFile   string `toml:"output_file"`
		IncludeFlags bool   `toml:"include_flags"`
	} `toml:"trace"`

	Statistics struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
	} `toml:"statistics"`

	Coverage struct {
		Enabled bool `toml:"enabled"`
	} `toml:"coverage"`
}

// DefaultConfig returns tas's out-of-the-box settings.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.PCWidth = isa.DefaultPCWidth

	cfg.CPU.MaxCycles = 1_000_000
	cfg.CPU.HaltOnSelfBranch = true

	cfg.Display.NumberFormat = "hex"

	cfg.Trace.Enabled = false
	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.IncludeFlags = true

	cfg.Statistics.Enabled = false
	cfg.Statistics.OutputFile = "stats.json"

	cfg.Coverage.Enabled = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "tangle")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".tas.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "tangle")

	default:
		return ".tas.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return ".tas.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration, preferring a .tas.toml in the current
// directory over the platform config path, per SPEC_FULL §E6.
func Load() (*Config, error) {
	if _, err := os.Stat(".tas.toml"); err == nil {
		return LoadFrom(".tas.toml")
	}
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults for any field the file doesn't set.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Assembler.PCWidth < 1 || cfg.Assembler.PCWidth > isa.MaxPCWidth {
		return nil, fmt.Errorf("assembler.pc_width must be between 1 and %d, got %d", isa.MaxPCWidth, cfg.Assembler.PCWidth)
	}

	return cfg, nil
}

// SaveTo writes configuration to the specified file in TOML form.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-provided config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
