package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/obowen/fpga-wavetrace/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter wavetrace.json",
	Long: `Create a wavetrace.json with default capture parameters in the given
directory (or the current directory). Edit it to point at your sources and
name the top module, clock, reset and debug nets, then run 'wavetrace
generate'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, "wavetrace.json")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	cfg.Top = "top"
	cfg.Clock = "clk"
	cfg.Reset = "rst"
	cfg.Nets = []config.NetEntry{
		{Base: "instance0", Paths: []string{"some_net", "some_bus[7:0]"}},
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	color.Green("Created %s", path)
	fmt.Println("Edit it to select your sources, top module and debug nets.")
	return nil
}
