package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brewing_control/internal/config"
	"brewing_control/internal/models"
	"brewing_control/internal/recipe"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <recipe-file>...",
		Short: "Check recipe files against the configured rig",
		Long: `Parse each recipe file (YAML or JSON) and check that every step has one
temperature per heater zone and one goal per fluid-path actuator.

Example:
  brewctl validate recipes/pale-ale.yml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			layout := cfg.Layout()
			out := cmd.OutOrStdout()

			failed := 0
			for _, path := range args {
				parsed, err := recipe.ParseFile(path)
				if err == nil {
					err = recipe.Validate(parsed.Steps, layout)
				}
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s: %s\n", path, describe(parsed))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d recipe files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func describe(p recipe.Parsed) string {
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	var bounded uint64
	holds := 0
	for _, s := range p.Steps {
		if s.DurationSec == models.Unbounded {
			holds++
			continue
		}
		bounded += s.DurationSec
	}
	desc := fmt.Sprintf("%s, %d steps, %ds timed", name, len(p.Steps), bounded)
	if holds > 0 {
		desc += fmt.Sprintf(", %d held until skipped", holds)
	}
	return desc
}
