package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tangle-project/tangle/loader"
	"github.com/tangle-project/tangle/tui"
	"github.com/tangle-project/tangle/vm"
)

func newInspectCmd() *cobra.Command {
	var symbolsFile string

	cmd := &cobra.Command{
		Use:   "inspect HEXFILE",
		Short: "Step the reference CPU model one FSM state at a time in a terminal viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectHex(args[0], symbolsFile)
		},
	}

	cmd.Flags().StringVar(&symbolsFile, "symbols", "", "assembly source to pull label names from, for address annotation")
	return cmd
}

func inspectHex(hexPath, symbolsFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(hexPath) // #nosec G304 -- user-specified hex image path
	if err != nil {
		return fmt.Errorf("opening hex image: %w", err)
	}
	defer f.Close()

	machine := vm.NewVM(cfg.Assembler.PCWidth)
	machine.MaxCycles = cfg.CPU.MaxCycles

	if err := loader.LoadHex(f, machine); err != nil {
		return fmt.Errorf("loading hex image: %w", err)
	}

	// A hex image alone carries no symbol table (spec.md §6: "no
	// external symbol-file format is specified"); --symbols lets a user
	// point at the .s source it was assembled from for label
	// annotation, but the inspector works fine without it too.
	syms, err := loadSymbolsFile(symbolsFile)
	if err != nil {
		return err
	}

	ins := tui.NewInspect(machine, syms)
	return ins.Run()
}
