// Package isa holds the Tangle instruction set definition: the opcode
// table, bit-field layout, register count, and the operand grammar each
// mnemonic is parsed and encoded with. Both the assembler and the
// reference CPU model import it so their notions of "what a word means"
// cannot drift apart.
package isa

// WordSize is the width of a Tangle instruction/data word in bits.
const WordSize = 16

// Bit-field layout (bit 15 is the MSB of the word).
const (
	OpcodeShift = 11
	OpcodeWidth = 5
	OpcodeMask  = (1 << OpcodeWidth) - 1

	RDShift = 8
	RDWidth = 3
	RDMask  = (1 << RDWidth) - 1

	RSShift = 5
	RSWidth = 3
	RSMask  = (1 << RSWidth) - 1

	IMM5Width = 5
	IMM5Mask  = (1 << IMM5Width) - 1

	IMM8Width = 8
	IMM8Mask  = (1 << IMM8Width) - 1
)

// NumRegisters is the size of the register file; r0 always reads as zero.
const NumRegisters = 8

// DefaultPCWidth is the reference model's default PC width in bits,
// giving a 64-word program/data space. Implementations must accept a
// configurable width up to MaxPCWidth and mask PC arithmetic to it.
const (
	DefaultPCWidth = 6
	MaxPCWidth     = 16
)

// Immediate ranges, per the encoder's authoritative range checks.
const (
	MinImmAMI = -16
	MaxImmAMI = 31

	MinImmHiLo = -128
	MaxImmHiLo = 255

	MinBranchDisp = -128
	MaxBranchDisp = 127

	MinMemDisp = -16
	MaxMemDisp = 15
)

// Opcode is a 5-bit Tangle opcode. The numbering is the hardware
// encoding: it is authoritative over any host-header numbering that
// might disagree with it (see spec §9, "opcode divergence").
type Opcode uint8

const (
	OpOR  Opcode = 0
	OpAND Opcode = 1
	OpXOR Opcode = 2
	OpSLL Opcode = 3 // reserved
	OpSLR Opcode = 4 // reserved
	OpNOT Opcode = 5
	OpNEG Opcode = 6
	OpADD Opcode = 7
	OpSUB Opcode = 8
	OpMOV Opcode = 9

	OpMOVHI Opcode = 10
	OpMOVLO Opcode = 11

	OpCMP Opcode = 12

	OpJE   Opcode = 13
	OpJNE  Opcode = 14
	OpJGS  Opcode = 15
	OpJGU  Opcode = 16
	OpJLS  Opcode = 17
	OpJLU  Opcode = 18
	OpJGES Opcode = 19
	OpJGEU Opcode = 20
	OpJLES Opcode = 21
	OpJLEU Opcode = 22
	OpJ    Opcode = 23
	OpJAL  Opcode = 24

	OpLW Opcode = 25
	OpSW Opcode = 26
)

// Class groups opcodes by the operand grammar and encoding layout they share.
type Class int

const (
	ClassAMI Class = iota // ALU / Move / I-O: reg/reg, reg/imm, or single-register forms
	ClassBranch
	ClassMemory
)

// Grammar selects the operand-parsing shape for a mnemonic, per spec §4.2.
type Grammar int

const (
	GrammarNone  Grammar = iota // no operands (nop)
	GrammarOne                  // single register, immediate, or label (unary AMI, branches)
	GrammarTwo                  // rd, (rs | $imm | label)
	GrammarThree                // rd, $imm(rs) (lw/sw)
)

// MnemonicInfo is the per-mnemonic dispatch entry: opcode, class, and
// the grammar selector that drives parsing and encoding. A
// language-neutral stand-in for the source table's function-pointer
// dispatch (spec §9).
type MnemonicInfo struct {
	Opcode  Opcode
	Class   Class
	Grammar Grammar
	// Unary is true for the single-operand AMI forms (not, neg, and the
	// nop alias), which only ever carry rd.
	Unary bool
}

// Mnemonics is the canonical mnemonic table. Keys are lowercase; callers
// lower-case the token before indexing to get case-insensitive lookups.
var Mnemonics = map[string]MnemonicInfo{
	"or":  {OpOR, ClassAMI, GrammarTwo, false},
	"and": {OpAND, ClassAMI, GrammarTwo, false},
	"xor": {OpXOR, ClassAMI, GrammarTwo, false},
	"not": {OpNOT, ClassAMI, GrammarOne, true},
	"neg": {OpNEG, ClassAMI, GrammarOne, true},
	"add": {OpADD, ClassAMI, GrammarTwo, false},
	"sub": {OpSUB, ClassAMI, GrammarTwo, false},
	"mov": {OpMOV, ClassAMI, GrammarTwo, false},

	"movhi": {OpMOVHI, ClassAMI, GrammarTwo, false},
	"movlo": {OpMOVLO, ClassAMI, GrammarTwo, false},

	"cmp": {OpCMP, ClassAMI, GrammarTwo, false},

	"je":   {OpJE, ClassBranch, GrammarOne, false},
	"jne":  {OpJNE, ClassBranch, GrammarOne, false},
	"jgs":  {OpJGS, ClassBranch, GrammarOne, false},
	"jgu":  {OpJGU, ClassBranch, GrammarOne, false},
	"jls":  {OpJLS, ClassBranch, GrammarOne, false},
	"jlu":  {OpJLU, ClassBranch, GrammarOne, false},
	"jges": {OpJGES, ClassBranch, GrammarOne, false},
	"jgeu": {OpJGEU, ClassBranch, GrammarOne, false},
	"jles": {OpJLES, ClassBranch, GrammarOne, false},
	"jleu": {OpJLEU, ClassBranch, GrammarOne, false},
	"j":    {OpJ, ClassBranch, GrammarOne, false},
	"jal":  {OpJAL, ClassBranch, GrammarOne, false},

	"lw": {OpLW, ClassMemory, GrammarThree, false},
	"sw": {OpSW, ClassMemory, GrammarThree, false},

	// nop aliases to the hardware's unary NEG reading r0; since r0 is
	// wired to zero, the observable effect is identity (spec §9).
	"nop": {OpNEG, ClassAMI, GrammarNone, true},
}

// IsBranch reports whether opcode op is a branch (conditional, J, or JAL).
func (op Opcode) IsBranch() bool {
	return op >= OpJE && op <= OpJAL
}

var opcodeMnemonic = buildOpcodeMnemonic()

func buildOpcodeMnemonic() map[Opcode]string {
	m := make(map[Opcode]string, len(Mnemonics))
	for name, info := range Mnemonics {
		if name == "nop" {
			continue // alias; "neg" is the canonical name for OpNEG
		}
		m[info.Opcode] = name
	}
	return m
}

// Mnemonic returns the canonical lowercase mnemonic for an opcode, or
// "" if none is registered (reserved opcodes SLL/SLR have no assigned
// mnemonic in this table; they decode but cannot be assembled).
func (op Opcode) Mnemonic() string {
	return opcodeMnemonic[op]
}

// MaskPC masks an address to the given PC width, wrapping per spec §3's
// requirement that taken branches and JAL never leave the PC outside
// [0, 2^PCWidth-1].
func MaskPC(addr int32, pcWidth int) uint32 {
	mask := uint32(1)<<uint(pcWidth) - 1
	return uint32(addr) & mask
}
