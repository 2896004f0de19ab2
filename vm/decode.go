package vm

import "github.com/tangle-project/tangle/isa"

// NextPCKind selects how IFETCH computes the next-fetch address, per
// spec §4.7.
type NextPCKind int

const (
	NextPCInc NextPCKind = iota
	NextPCImm
	NextPCReg
)

// InsnType is the decode unit's broad instruction classification, per
// spec §4.7's enumerated set.
type InsnType int

const (
	InsnNone InsnType = iota
	InsnAMIRegReg
	InsnAMIRegImm
	InsnBraJAL
	InsnMemLW
	InsnMemSW
)

// Decoded is everything the execute stage needs, produced
// combinationally from an instruction word and the flags in effect at
// decode time (conditional branches test flags immediately - spec §4.7).
type Decoded struct {
	Opcode   isa.Opcode
	Mnemonic string

	RegDst    int // destination register for ALU/LW/JAL writes
	RegSrc    int // rs field: source register for reg/reg AMI and the base register for memory ops
	BranchReg int // raw rd field for a branch instruction, the target register when NextPC == NextPCReg

	NextPC   NextPCKind
	InsnType InsnType
	ALUOp    isa.Opcode
	Imm      int32

	RegWE bool
	MemWE bool
	ALUEn bool
}

// Decode implements the decode rules of spec §4.7.
func Decode(word uint16, flags Flags) Decoded {
	opcode := isa.Opcode((word >> isa.OpcodeShift) & isa.OpcodeMask)
	rd := int((word >> isa.RDShift) & isa.RDMask)
	rs := int((word >> isa.RSShift) & isa.RSMask)
	imm5 := word & isa.IMM5Mask
	imm8 := word & isa.IMM8Mask
	mnemonic := opcode.Mnemonic()

	d := Decoded{Opcode: opcode, Mnemonic: mnemonic, RegDst: rd, RegSrc: rs, NextPC: NextPCInc}

	switch {
	case opcode == isa.OpMOVHI || opcode == isa.OpMOVLO:
		d.InsnType = InsnAMIRegImm
		d.ALUEn = true
		d.ALUOp = opcode
		d.Imm = int32(imm8) // zero-extended (spec §9: AMI imm is never sign-extended)
		d.RegWE = true

	case opcode.IsBranch():
		decodeBranch(&d, opcode, mnemonic, rd, imm8, flags)

	case opcode == isa.OpLW:
		d.InsnType = InsnMemLW
		d.ALUEn = true
		d.ALUOp = isa.OpADD
		d.Imm = signExtend5(imm5)
		d.RegWE = true

	case opcode == isa.OpSW:
		d.InsnType = InsnMemSW
		d.ALUEn = true
		d.ALUOp = isa.OpADD
		d.Imm = signExtend5(imm5)
		d.MemWE = true

	default:
		// General AMI: OR, AND, XOR, SLL, SLR, NOT, NEG, ADD, SUB, MOV, CMP.
		d.ALUEn = true
		d.ALUOp = opcode
		d.Imm = int32(imm5) // zero-extended, per spec §9
		d.RegWE = opcode != isa.OpCMP
		if rs != 0 {
			d.InsnType = InsnAMIRegReg
		} else {
			d.InsnType = InsnAMIRegImm
		}
	}

	return d
}

func decodeBranch(d *Decoded, opcode isa.Opcode, mnemonic string, rd int, imm8 uint16, flags Flags) {
	d.BranchReg = rd

	switch opcode {
	case isa.OpJ:
		d.InsnType = InsnNone
		setBranchTarget(d, rd, imm8, true)

	case isa.OpJAL:
		d.InsnType = InsnBraJAL
		d.RegWE = true
		d.RegDst = 7 // link register
		setBranchTarget(d, rd, imm8, true)

	default:
		// Conditional branch: JE..JLEU.
		d.InsnType = InsnNone
		taken := flags.branchTaken(mnemonic)
		setBranchTarget(d, rd, imm8, taken)
	}
}

func setBranchTarget(d *Decoded, rd int, imm8 uint16, taken bool) {
	if !taken {
		d.NextPC = NextPCInc
		return
	}
	if rd == 0 {
		d.NextPC = NextPCImm
		d.Imm = signExtend8(imm8)
	} else {
		d.NextPC = NextPCReg
	}
}

func signExtend5(v uint16) int32 {
	if v&0x10 != 0 {
		return int32(v) - 32
	}
	return int32(v)
}

func signExtend8(v uint16) int32 {
	if v&0x80 != 0 {
		return int32(v) - 256
	}
	return int32(v)
}
