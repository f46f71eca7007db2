// wavetrace instruments a Verilog design for on-chip signal capture: it
// routes selected nets up through the module hierarchy to a capture
// module instantiated at the top level, emitting modified copies of the
// affected source files.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/obowen/fpga-wavetrace/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "wavetrace",
	Short: "Instrument a Verilog design for on-chip signal capture",
	Long: `wavetrace generates debug copies of Verilog source files with selected
nets routed up to a capture module at the top level. Net selection, clock,
reset and capture parameters come from a wavetrace.json configuration file.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(generateCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file (default: ./wavetrace.json)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig honors an explicit --config path, falling back to the
// standard search locations.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(".")
}
