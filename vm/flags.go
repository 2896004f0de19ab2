package vm

// Flags holds the ALU condition flags, per spec §3: ZF (zero), SF
// (sign, bit 15 of the result), CF (carry/borrow), OF (signed
// overflow). Only the ops named in spec §4.6 touch them; every other
// op leaves them exactly as they were.
type Flags struct {
	ZF bool
	SF bool
	CF bool
	OF bool
}

const signBit = uint16(1) << 15

// updateZS sets ZF/SF from result; used by every flag-producing op.
func (f *Flags) updateZS(result uint16) {
	f.ZF = result == 0
	f.SF = result&signBit != 0
}

// updateLogical sets flags for OR/AND/XOR: ZF/SF from the result, CF
// and OF always cleared (spec §4.6).
func (f *Flags) updateLogical(result uint16) {
	f.updateZS(result)
	f.CF = false
	f.OF = false
}

// updateAdd sets flags for ADD: carry out of bit 15, and signed
// overflow when both operands share a sign that the result doesn't.
func (f *Flags) updateAdd(a, b, result uint16) {
	f.updateZS(result)
	sum := uint32(a) + uint32(b)
	f.CF = sum > 0xFFFF
	aSign := a&signBit != 0
	bSign := b&signBit != 0
	rSign := result&signBit != 0
	f.OF = aSign == bSign && aSign != rSign
}

// updateSub sets flags for SUB/CMP: CF is the borrow flag (true when
// a < b unsigned, per spec §4.6 - the opposite convention from a
// no-borrow carry flag), and OF the signed-overflow definition for
// subtraction.
func (f *Flags) updateSub(a, b, result uint16) {
	f.updateZS(result)
	f.CF = a < b
	aSign := a&signBit != 0
	bSign := b&signBit != 0
	rSign := result&signBit != 0
	f.OF = aSign != bSign && aSign != rSign
}

// branchTaken evaluates the condition table in spec §4.7 for a
// conditional jump mnemonic (je..jleu). Any other mnemonic returns
// false.
func (f *Flags) branchTaken(mnemonic string) bool {
	switch mnemonic {
	case "je":
		return f.ZF
	case "jne":
		return !f.ZF
	case "jgs":
		return !f.ZF && f.SF == f.OF
	case "jgu":
		return !f.CF && !f.ZF
	case "jges":
		return f.SF == f.OF
	case "jgeu":
		return !f.CF
	case "jls":
		return f.SF != f.OF
	case "jlu":
		return f.CF
	case "jles":
		return f.ZF || f.SF != f.OF
	case "jleu":
		return f.CF || f.ZF
	default:
		return false
	}
}
