package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/obowen/fpga-wavetrace/internal/synplify"
	"github.com/obowen/fpga-wavetrace/internal/trace"
	"github.com/obowen/fpga-wavetrace/internal/validator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate instrumented Verilog files",
	Long: `Build the debug hierarchy from the configured nets and emit modified
copies of every affected source file, plus the signal list, into the output
directory. If a synthesis project file is configured, it is patched to pick
up the generated files.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v, err := validator.New()
	if err != nil {
		return err
	}
	if errs := v.ValidationErrors(cfg); len(errs) > 0 {
		for _, e := range errs {
			color.Red("  %s", e)
		}
		return fmt.Errorf("configuration is invalid (%d problems)", len(errs))
	}

	s, err := trace.FromConfig(cfg)
	if err != nil {
		return err
	}

	res, err := s.Generate()
	if err != nil {
		return err
	}

	color.Green("\nGenerated %d files (%d debug bits):", len(res.Files), res.DataBits)
	for _, f := range res.Files {
		fmt.Printf("  %s\n", f)
	}
	fmt.Printf("  %s\n", res.SignalList)

	if prj := cfg.Synthesis.ProjectFile; prj != "" {
		if err := synplify.Patch(prj, cfg.Synthesis.CaptureSources, res.Files, cfg.Top); err != nil {
			return err
		}
		color.Green("Patched synthesis project %s", prj)
	}
	return nil
}
