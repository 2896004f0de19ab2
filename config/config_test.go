package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tangle-project/tangle/isa"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Assembler.PCWidth != isa.DefaultPCWidth {
		t.Errorf("PCWidth = %d, want %d", cfg.Assembler.PCWidth, isa.DefaultPCWidth)
	}
	if cfg.CPU.MaxCycles != 1_000_000 {
		t.Errorf("MaxCycles = %d, want 1000000", cfg.CPU.MaxCycles)
	}
	if !cfg.CPU.HaltOnSelfBranch {
		t.Error("expected HaltOnSelfBranch=true by default")
	}
	if cfg.Display.NumberFormat != "hex" {
		t.Errorf("NumberFormat = %q, want hex", cfg.Display.NumberFormat)
	}
	if cfg.Trace.Enabled {
		t.Error("expected Trace.Enabled=false by default")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.CPU.MaxCycles = 5_000_000
	cfg.Trace.Enabled = true
	cfg.Assembler.PCWidth = 10

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.CPU.MaxCycles != 5_000_000 {
		t.Errorf("MaxCycles = %d, want 5000000", loaded.CPU.MaxCycles)
	}
	if !loaded.Trace.Enabled {
		t.Error("expected Trace.Enabled=true")
	}
	if loaded.Assembler.PCWidth != 10 {
		t.Errorf("PCWidth = %d, want 10", loaded.Assembler.PCWidth)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on a missing file: %v", err)
	}
	if cfg.CPU.MaxCycles != 1_000_000 {
		t.Error("expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[cpu]
max_cycles = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected error when loading invalid TOML")
	}
}

func TestLoadRejectsBadPCWidth(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bad_pc_width.toml")

	badTOML := `
[assembler]
pc_width = 99
`
	if err := os.WriteFile(configPath, []byte(badTOML), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected error for pc_width exceeding isa.MaxPCWidth")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
}
