package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/obowen/fpga-wavetrace/internal/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	Long: `Load the configuration and validate it against the schema without
touching any source files.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	color.Green("Configuration OK: top %q, %d net entries", cfg.Top, len(cfg.Nets))
	return nil
}
