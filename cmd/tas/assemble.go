package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tangle-project/tangle/encoder"
	"github.com/tangle-project/tangle/hexwriter"
	"github.com/tangle-project/tangle/parser"
)

func newAssembleCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "assemble INPUT",
		Short: "Assemble a Tangle source file into a hex image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return assembleFile(args[0], output)
		},
	}

	// Default matches spec.md §4.9's driver default.
	cmd.Flags().StringVarP(&output, "output", "o", "ram.hex", "output hex file path")
	return cmd
}

// assembleFile runs the two-pass assembler (spec.md §4.1-§4.5): parse,
// encode, relocate, emit. Any diagnostic is fatal and no output file
// is written (spec.md §7).
func assembleFile(input, output string) error {
	program, _, err := parser.ParseFile(input)
	if err != nil {
		return fmt.Errorf("parse error:\n%w", err)
	}

	records, err := encoder.Encode(program)
	if err != nil {
		return fmt.Errorf("encode error:\n%w", err)
	}

	if err := encoder.Relocate(records, program.SymbolTable); err != nil {
		return fmt.Errorf("relocation error:\n%w", err)
	}

	f, err := os.Create(output) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := hexwriter.Write(f, input, records); err != nil {
		return fmt.Errorf("writing hex image: %w", err)
	}

	return nil
}
