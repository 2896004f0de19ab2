package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tangle-project/tangle/disasm"
)

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm HEXFILE",
		Short: "Disassemble a hex image back into Tangle assembly text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassembleFile(args[0])
		},
	}
}

// disassembleFile reads a hex image (spec.md §4.5's format, minus the
// leading comment line) and prints one disassembled line per word.
func disassembleFile(hexPath string) error {
	f, err := os.Open(hexPath) // #nosec G304 -- user-specified hex image path
	if err != nil {
		return fmt.Errorf("opening hex image: %w", err)
	}
	defer f.Close()

	var words []uint16
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if strings.HasPrefix(line, "//") {
				continue
			}
		}
		if line == "" {
			continue
		}
		word, err := strconv.ParseUint(line, 16, 16)
		if err != nil {
			return fmt.Errorf("invalid hex word %q: %w", line, err)
		}
		words = append(words, uint16(word))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading hex image: %w", err)
	}

	for _, line := range disasm.Program(words) {
		fmt.Printf("%04x: %04x    %s\n", line.Address, line.Word, line.Text)
	}
	return nil
}
