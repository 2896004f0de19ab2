// Command tas is the Tangle assembler and reference CPU model driver:
// assemble -> relocate -> emit hex (spec.md §4.9, §6), plus the
// SPEC_FULL §E6 verbs that exercise the reference model end-to-end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tangle-project/tangle/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:   "tas",
		Short: "Tangle assembler and reference CPU model",
		// Bare "tas INPUT" assembles, matching spec.md §9's CLI shape
		// (the original spec predates cobra's multi-verb dispatch).
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return assembleFile(args[0], output)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVarP(&output, "output", "o", "ram.hex", "output hex file path (bare \"tas INPUT\" form)")
	root.AddCommand(newAssembleCmd(), newRunCmd(), newDisasmCmd(), newInspectCmd())

	// spec.md §4.9: "-h prints usage and exits with failure status" -
	// cobra's own help handling (both "-h"/"--help" and a bare "tas"
	// invocation's cmd.Help() above) otherwise prints and returns nil,
	// which would leave main's os.Exit(1) unreached.
	defaultHelpFunc := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		defaultHelpFunc(cmd, args)
		os.Exit(1)
	})

	return root
}

// loadConfig loads .tas.toml (or the platform config path), falling
// back to defaults. A missing config file is not an error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
