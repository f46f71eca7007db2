// Package config loads the wavetrace project configuration: where the
// Verilog sources live, which module is the top level, which nets to
// capture and how the capture memory is parameterized.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration for wavetrace
type Config struct {
	// Sources lists Verilog files or directories to scan for module
	// definitions
	Sources []string `json:"sources,omitempty"`

	// Top is the module type instrumented as the top level
	Top string `json:"top,omitempty"`

	// Clock is the top-level net driving the capture clock
	Clock string `json:"clock,omitempty"`

	// Reset is the top-level net resetting the capture module
	Reset string `json:"reset,omitempty"`

	// Nets lists the hierarchical net paths to capture
	Nets []NetEntry `json:"nets,omitempty"`

	// Capture parameterizes the capture module
	Capture CaptureConfig `json:"capture,omitempty"`

	// OutputDir is where instrumented files are written
	OutputDir string `json:"outputDir,omitempty"`

	// Synthesis configures optional synthesis-project patching
	Synthesis SynthesisConfig `json:"synthesis,omitempty"`
}

// NetEntry is a group of net paths with an optional shared base prefix
type NetEntry struct {
	// Base is a hierarchical prefix applied to every path in the entry
	Base string `json:"base,omitempty"`

	// Paths are the net paths, e.g. "core0.dout[7:0]"
	Paths []string `json:"paths"`
}

// CaptureConfig parameterizes the generated capture-module instantiation
type CaptureConfig struct {
	// ClockMHz is the capture clock frequency in MHz
	ClockMHz float64 `json:"clockMHz,omitempty"`

	// UartBaud is the readout UART baud rate
	UartBaud int `json:"uartBaud,omitempty"`

	// PreTrigDepth is the pre-trigger capture memory depth
	PreTrigDepth int `json:"preTrigDepth,omitempty"`

	// CaptDepth is the post-trigger capture memory depth
	CaptDepth int `json:"captDepth,omitempty"`
}

// SynthesisConfig points at a Synplify project file to patch with the
// generated debug files
type SynthesisConfig struct {
	// ProjectFile is the path to the .prj file (empty = no patching)
	ProjectFile string `json:"projectFile,omitempty"`

	// CaptureSources lists the capture-module HDL files to add to the
	// synthesis project alongside the generated debug files.
	CaptureSources []string `json:"captureSources,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Sources: []string{"rtl"},
		Capture: CaptureConfig{
			ClockMHz:     100.0,
			UartBaud:     115200,
			PreTrigDepth: 64,
			CaptDepth:    512,
		},
		OutputDir: "output",
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./wavetrace.json (current working directory)
//  2. ./.wavetrace.json (current working directory)
//  3. <rootPath>/wavetrace.json (if different from cwd)
//  4. ~/.config/wavetrace/config.json
//
// Returns an error if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "wavetrace.json"),
		filepath.Join(cwd, ".wavetrace.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "wavetrace.json"),
				filepath.Join(rootPath, ".wavetrace.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "wavetrace", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return nil, fmt.Errorf("no wavetrace.json found (run 'wavetrace init' to create one)")
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Capture.UartBaud == 0 {
		c.Capture.UartBaud = 115200
	}
	if c.Capture.PreTrigDepth == 0 {
		c.Capture.PreTrigDepth = 64
	}
	if c.Capture.CaptDepth == 0 {
		c.Capture.CaptDepth = 512
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// NetPaths flattens the net entries into full hierarchical paths, applying
// each entry's base prefix, in configuration order
func (c *Config) NetPaths() []string {
	var paths []string
	for _, entry := range c.Nets {
		prefix := ""
		if entry.Base != "" {
			prefix = entry.Base + "."
		}
		for _, p := range entry.Paths {
			paths = append(paths, prefix+p)
		}
	}
	return paths
}
