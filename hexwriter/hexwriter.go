// Package hexwriter emits the assembler's final artifact: one
// 4-hex-digit word per instruction record, in program order, per spec
// §4.5.
package hexwriter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tangle-project/tangle/encoder"
)

// Write emits the hex image for records to w. The first line is a
// comment naming the input file; every following line is exactly four
// lowercase hex digits. No addresses, no length prefix, no trailing
// adornment (spec §6).
func Write(w io.Writer, inputFilename string, records []*encoder.Record) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "// %s file\n", inputFilename); err != nil {
		return err
	}

	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%04x\n", rec.Word); err != nil {
			return err
		}
	}

	return bw.Flush()
}
