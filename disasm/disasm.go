// Package disasm turns a Tangle instruction word back into assembly
// text. It is the encoder run backwards: given a word, it recovers the
// mnemonic and operand syntax the assembler's grammar (isa.Mnemonics)
// would have produced it from, using the same decode rules the CPU
// model applies in vm.Decode - so a disassembly always matches what
// the reference model would actually do with the word.
package disasm

import (
	"fmt"

	"github.com/tangle-project/tangle/isa"
)

// Line is one disassembled instruction: its address, the raw word,
// and the reconstructed mnemonic text.
type Line struct {
	Address uint32
	Word    uint16
	Text    string
}

// Instruction decodes word into assembly text. addr is only used to
// render PC-relative branch displacements as an absolute target
// comment; it does not affect the text's mnemonic/operand shape.
func Instruction(addr uint32, word uint16) string {
	opcode := isa.Opcode((word >> isa.OpcodeShift) & isa.OpcodeMask)
	rd := int((word >> isa.RDShift) & isa.RDMask)
	rs := int((word >> isa.RSShift) & isa.RSMask)
	imm5 := word & isa.IMM5Mask
	imm8 := word & isa.IMM8Mask

	mnemonic := opcode.Mnemonic()
	if mnemonic == "" {
		return fmt.Sprintf(".word 0x%04x", word)
	}

	info, ok := isa.Mnemonics[mnemonic]
	if !ok {
		return fmt.Sprintf(".word 0x%04x", word)
	}

	switch info.Class {
	case isa.ClassAMI:
		return disassembleAMI(mnemonic, info, rd, rs, imm5, imm8)
	case isa.ClassBranch:
		return disassembleBranch(addr, mnemonic, rd, imm8)
	case isa.ClassMemory:
		return disassembleMemory(mnemonic, rd, rs, imm5)
	default:
		return fmt.Sprintf(".word 0x%04x", word)
	}
}

func disassembleAMI(mnemonic string, info isa.MnemonicInfo, rd, rs int, imm5, imm8 uint16) string {
	switch mnemonic {
	case "movhi", "movlo":
		return fmt.Sprintf("%s %%r%d, $%d", mnemonic, rd, imm8)
	}

	// nop is assembled as neg on %r0 (isa.Mnemonics), so that word reads back as nop.
	if mnemonic == "neg" && rd == 0 {
		return "nop"
	}

	if info.Unary {
		return fmt.Sprintf("%s %%r%d", mnemonic, rd)
	}

	// decode's own rule (vm.Decode): rs != 0 selects the reg/reg
	// form, otherwise it is reg/imm with a zero-extended imm5.
	if rs != 0 {
		return fmt.Sprintf("%s %%r%d, %%r%d", mnemonic, rd, rs)
	}
	return fmt.Sprintf("%s %%r%d, $%d", mnemonic, rd, imm5)
}

func disassembleBranch(addr uint32, mnemonic string, rd int, imm8 uint16) string {
	if rd != 0 {
		return fmt.Sprintf("%s %%r%d", mnemonic, rd)
	}
	disp := signExtend8(imm8)
	target := int64(addr) + int64(disp)
	return fmt.Sprintf("%s $%d  // -> 0x%04x", mnemonic, disp, uint32(target))
}

func disassembleMemory(mnemonic string, rd, rs int, imm5 uint16) string {
	disp := signExtend5(imm5)
	return fmt.Sprintf("%s %%r%d, $%d(%%r%d)", mnemonic, rd, disp, rs)
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

// Program disassembles a full word stream, one Line per word, in
// address order starting at 0.
func Program(words []uint16) []Line {
	lines := make([]Line, len(words))
	for i, w := range words {
		addr := uint32(i)
		lines[i] = Line{Address: addr, Word: w, Text: Instruction(addr, w)}
	}
	return lines
}
