package encoder

import (
	"strings"
	"testing"

	"github.com/tangle-project/tangle/parser"
)

func assembleWords(t *testing.T, source string) []uint16 {
	t.Helper()
	p := parser.NewParser(source, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	records, err := Encode(program)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if err := Relocate(records, program.SymbolTable); err != nil {
		t.Fatalf("relocate error: %v", err)
	}
	words := make([]uint16, len(records))
	for i, rec := range records {
		words[i] = rec.Word
	}
	return words
}

// TestEncodeSingleRegImm checks the bit-layout formula (opcode<<11 |
// rd<<8 | rs<<5 | imm5) against opcode=0 (OR), rd=1, rs=0, imm5=5 -
// 0x0105, not the 0x0905 the walkthrough text states elsewhere (that
// value only works out if opcode=1, contradicting "opcode 0" in the
// same sentence; the reg/reg and branch walkthroughs both check out
// exactly against this formula, so it is trusted over that one figure).
func TestEncodeSingleRegImm(t *testing.T) {
	words := assembleWords(t, "or %r1, $5\n")
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}
	if words[0] != 0x0105 {
		t.Errorf("or %%r1, $5 = 0x%04x, want 0x0105", words[0])
	}
}

func TestEncodeRegReg(t *testing.T) {
	words := assembleWords(t, "add %r2, %r3\n")
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}
	if words[0] != 0x3A60 {
		t.Errorf("add %%r2, %%r3 = 0x%04x, want 0x3A60", words[0])
	}
}

func TestEncodeForwardBranch(t *testing.T) {
	var src string
	src += "jne future\n"
	for i := 0; i < 10; i++ {
		src += "nop\n"
	}
	src += "future:\n"

	words := assembleWords(t, src)
	if len(words) != 11 {
		t.Fatalf("expected 11 words, got %d", len(words))
	}
	if words[0] != 0x700B {
		t.Errorf("jne future = 0x%04x, want 0x700B", words[0])
	}
}

func TestEncodeBackwardBranchOutOfRange(t *testing.T) {
	var src string
	src += "future:\n"
	for i := 0; i < 200; i++ {
		src += "nop\n"
	}
	src += "jne future\n"

	p := parser.NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	// The label is already in the symbol table, so Encode resolves it and
	// reports the out-of-range displacement itself.
	records, err := Encode(program)
	if err == nil {
		err = Relocate(records, program.SymbolTable)
	}
	if err == nil {
		t.Fatalf("expected DisplacementOutOfRange, got no error")
	}
	if !strings.Contains(err.Error(), "label too far") {
		t.Fatalf("expected a 'label too far' diagnostic, got: %v", err)
	}
}

func TestEncodeMovhiMovlo(t *testing.T) {
	words := assembleWords(t, "movhi %r1, $0xAB\nmovlo %r1, $0xCD\n")
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0] != 0x51AB {
		t.Errorf("movhi %%r1, $0xAB = 0x%04x, want 0x51AB", words[0])
	}
}

func TestEncodeMemoryRoundTrip(t *testing.T) {
	words := assembleWords(t, "movlo %r1, $7\nmovhi %r2, $0\nsw %r1, $0(%r2)\nlw %r3, $0(%r2)\n")
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(words))
	}
}

func TestEncodeDuplicateLabel(t *testing.T) {
	src := "here:\nnop\nhere:\nnop\n"
	p := parser.NewParser(src, "test.s")
	_, err := p.Parse()
	if err == nil {
		t.Fatalf("expected DuplicateLabel error")
	}
}

func TestEncodeAMIImmOutOfRange(t *testing.T) {
	p := parser.NewParser("or %r1, $32\n", "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Encode(program); err == nil {
		t.Fatalf("expected range error for imm=32")
	}
}

// TestBranchRegisterOperandRejectsR0 guards spec §4.2's reserved
// discriminator: %r0 as a branch's register-absolute operand would
// encode bit-identical to a zero-displacement immediate branch, so it
// must be rejected at parse time rather than silently miscompiled.
func TestBranchRegisterOperandRejectsR0(t *testing.T) {
	p := parser.NewParser("je %r0\n", "test.s")
	if _, err := p.Parse(); err == nil {
		t.Fatalf("expected 'je %%r0' to be rejected, got no error")
	}
}
