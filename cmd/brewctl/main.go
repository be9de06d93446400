package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "brewctl",
		Short: "Brewing rig process control",
		Long: `brewctl runs the recipe engine that drives heaters and fluid-path
actuators, and checks recipe files against the configured rig.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default configs/config.yml)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newValidateCommand(opts))
	return root
}
