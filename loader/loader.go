// Package loader loads a Tangle hex image into the reference CPU
// model's memory, independently of the assembler that produced it
// (spec §2: "The reference model F consumes the hex file independently").
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tangle-project/tangle/vm"
)

// LoadHex reads a Tangle hex image from r and writes it into machine's
// memory starting at address 0 (spec §6). The first line, a comment
// naming the input file, is skipped; every other non-blank line must
// be a hex number that fits in 16 bits.
func LoadHex(r io.Reader, machine *vm.VM) error {
	scanner := bufio.NewScanner(r)
	addr := uint32(0)
	lineNum := 0
	first := true

	for scanner.Scan() {
		lineNum++
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
			return fmt.Errorf("line %d: invalid hex word %q: %w", lineNum, line, err)
		}

		if err := machine.Memory.Write(addr, uint16(word)); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		addr++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading hex image: %w", err)
	}

	return nil
}
