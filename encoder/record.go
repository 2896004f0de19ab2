// Package encoder implements the Tangle assembler's pass-1 encoding
// step and pass-2 relocation step, per spec §4.3-§4.4: it turns parsed
// instructions into 16-bit words, deferring any operand that names a
// label until the symbol table is complete.
package encoder

import (
	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/parser"
)

// Record is the per-instruction emission unit (spec §3's "instruction
// record"): the encoded word, its class (needed by the relocator to
// know whether a pending label resolves to an absolute offset or a
// PC-relative displacement), its program-word index, and - if the
// record was born with an unresolved label operand - the label's name.
type Record struct {
	Word         uint16
	Class        isa.Class
	PC           int
	PendingLabel string

	Pos     parser.Position
	RawLine string
}
