package vm

import "github.com/tangle-project/tangle/isa"

// execALU computes the result of a general-AMI op (spec §4.6) and
// updates flags in place for the ops that the table says affect them;
// every other op leaves flags untouched. a is the destination
// register's current value, b is the second operand (register or
// zero-extended immediate per decode).
func execALU(op isa.Opcode, a, b uint16, flags *Flags) uint16 {
	switch op {
	case isa.OpOR:
		r := a | b
		flags.updateLogical(r)
		return r
	case isa.OpAND:
		r := a & b
		flags.updateLogical(r)
		return r
	case isa.OpXOR:
		r := a ^ b
		flags.updateLogical(r)
		return r
	case isa.OpNOT:
		return ^a
	case isa.OpNEG:
		return -a
	case isa.OpADD:
		r := a + b
		flags.updateAdd(a, b, r)
		return r
	case isa.OpSUB, isa.OpCMP:
		r := a - b
		flags.updateSub(a, b, r)
		return r
	case isa.OpMOV:
		return b
	case isa.OpMOVHI:
		return (b & 0xFF) << 8
	case isa.OpMOVLO:
		return a | b
	case isa.OpSLL:
		return a << (b & 0xF)
	case isa.OpSLR:
		return a >> (b & 0xF)
	default:
		// Unassigned opcode (27-31): treated as a NOP that still
		// advances the PC, per spec §7.
		return a
	}
}
