package parser

import "github.com/tangle-project/tangle/isa"

// OperandKind tags which shape the "variable" operand of an instruction
// took in source: a register, a literal immediate, or an as-yet-unresolved
// label reference.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandImmediate
	OperandLabel
)

// Instruction is the parser's per-line record for one assembled
// instruction: everything the encoder needs, with label operands left
// unresolved (spec §3: "a record may be born with an unresolved label
// and must be patched before emission").
type Instruction struct {
	Pos      Position
	Mnemonic string // lowercase, canonical
	Info     isa.MnemonicInfo
	RawLine  string
	PC       int // program-word index (also the instruction's address)

	// Rd is the destination register for AMI forms, and (for branches)
	// the target register when the sole operand is a register.
	Rd int

	// Second is the kind of the AMI second operand / the branch's sole
	// operand. For unary AMI forms it is OperandRegister with the
	// register in Rd; unused (OperandNone) for nop.
	Second OperandKind
	Rs     int    // populated when Second == OperandRegister in a two-operand form
	Imm    int    // populated when Second == OperandImmediate
	Label  string // populated when Second == OperandLabel

	// Memory-only fields (lw/sw): rd, $imm(rs). The displacement is
	// always a literal per spec §4.2's "exact punctuation" grammar.
	MemRs  int
	MemImm int
}

// Program is the fully parsed source: every instruction in program
// order, plus the symbol table pass 1 built.
type Program struct {
	Instructions []*Instruction
	SymbolTable  *SymbolTable
}
