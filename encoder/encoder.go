package encoder

import (
	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/parser"
)

// Encode turns a parsed program into its instruction records, per spec
// §4.3. Literal operands are range-checked and encoded immediately;
// label operands resolve immediately if the label is already defined
// (true of every label in a Tangle program, since there is no
// preprocessing pass that could introduce one after the fact), and
// otherwise are left pending for Relocate.
func Encode(prog *parser.Program) ([]*Record, error) {
	records := make([]*Record, 0, len(prog.Instructions))

	for _, inst := range prog.Instructions {
		rec, err := encodeOne(inst, prog.SymbolTable)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func encodeOne(inst *parser.Instruction, symtab *parser.SymbolTable) (*Record, error) {
	rec := &Record{
		Class:   inst.Info.Class,
		PC:      inst.PC,
		Pos:     inst.Pos,
		RawLine: inst.RawLine,
	}

	opcodeBits := uint16(inst.Info.Opcode) << isa.OpcodeShift

	switch inst.Info.Class {
	case isa.ClassAMI:
		return encodeAMI(inst, symtab, rec, opcodeBits)
	case isa.ClassBranch:
		return encodeBranch(inst, symtab, rec, opcodeBits)
	case isa.ClassMemory:
		return encodeMemory(inst, rec, opcodeBits)
	default:
		return nil, NewEncodingError(inst, "unknown instruction class")
	}
}

func encodeAMI(inst *parser.Instruction, symtab *parser.SymbolTable, rec *Record, opcodeBits uint16) (*Record, error) {
	rdBits := uint16(inst.Rd) << isa.RDShift

	if inst.Mnemonic == "movhi" || inst.Mnemonic == "movlo" {
		// Second is always OperandImmediate here: the parser rejects
		// labels for movhi/movlo (spec §4.2).
		if inst.Imm < isa.MinImmHiLo || inst.Imm > isa.MaxImmHiLo {
			return nil, NewEncodingError(inst, "immediate out of range for movhi/movlo")
		}
		rec.Word = opcodeBits | rdBits | (uint16(inst.Imm) & isa.IMM8Mask)
		return rec, nil
	}

	if inst.Info.Unary {
		// not/neg: opcode,rd,000,00000 - no second operand to encode.
		rec.Word = opcodeBits | rdBits
		return rec, nil
	}

	switch inst.Second {
	case parser.OperandRegister:
		rec.Word = opcodeBits | rdBits | (uint16(inst.Rs) << isa.RSShift)
		return rec, nil

	case parser.OperandImmediate:
		if inst.Imm < isa.MinImmAMI || inst.Imm > isa.MaxImmAMI {
			return nil, NewEncodingError(inst, "immediate out of range")
		}
		rec.Word = opcodeBits | rdBits | (uint16(inst.Imm) & isa.IMM5Mask)
		return rec, nil

	case parser.OperandLabel:
		if sym, ok := symtab.Lookup(inst.Label); ok && sym.Defined {
			if sym.Off < isa.MinImmAMI || sym.Off > isa.MaxImmAMI {
				return nil, NewEncodingError(inst, "immediate out of range")
			}
			rec.Word = opcodeBits | rdBits | (uint16(sym.Off) & isa.IMM5Mask)
			return rec, nil
		}
		rec.Word = opcodeBits | rdBits
		rec.PendingLabel = inst.Label
		return rec, nil

	default:
		return nil, NewEncodingError(inst, "invalid operand")
	}
}

func encodeBranch(inst *parser.Instruction, symtab *parser.SymbolTable, rec *Record, opcodeBits uint16) (*Record, error) {
	switch inst.Second {
	case parser.OperandRegister:
		// opcode,rd,00000000: rd carries the register; rd != 0 is the
		// discriminator against the immediate/label form (spec §3).
		rec.Word = opcodeBits | (uint16(inst.Rd) << isa.RDShift)
		return rec, nil

	case parser.OperandImmediate:
		if inst.Imm < isa.MinBranchDisp || inst.Imm > isa.MaxBranchDisp {
			return nil, NewEncodingError(inst, "label too far, use register-based branch")
		}
		rec.Word = opcodeBits | (uint16(inst.Imm) & isa.IMM8Mask)
		return rec, nil

	case parser.OperandLabel:
		if sym, ok := symtab.Lookup(inst.Label); ok && sym.Defined {
			disp := sym.Off - inst.PC
			if disp < isa.MinBranchDisp || disp > isa.MaxBranchDisp {
				return nil, NewEncodingError(inst, "label too far, use register-based branch")
			}
			rec.Word = opcodeBits | (uint16(disp) & isa.IMM8Mask)
			return rec, nil
		}
		rec.Word = opcodeBits
		rec.PendingLabel = inst.Label
		return rec, nil

	default:
		return nil, NewEncodingError(inst, "invalid operand")
	}
}

func encodeMemory(inst *parser.Instruction, rec *Record, opcodeBits uint16) (*Record, error) {
	if inst.MemImm < isa.MinMemDisp || inst.MemImm > isa.MaxMemDisp {
		return nil, NewEncodingError(inst, "memory displacement out of range")
	}
	rdBits := uint16(inst.Rd) << isa.RDShift
	rsBits := uint16(inst.MemRs) << isa.RSShift
	rec.Word = opcodeBits | rdBits | rsBits | (uint16(inst.MemImm) & isa.IMM5Mask)
	return rec, nil
}
