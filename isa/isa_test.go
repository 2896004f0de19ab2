package isa_test

import (
	"testing"

	"github.com/tangle-project/tangle/isa"
)

func TestMnemonicRoundTrip(t *testing.T) {
	for name, info := range isa.Mnemonics {
		if name == "nop" {
			continue // alias; OpNEG's canonical name is "neg"
		}
		if got := info.Opcode.Mnemonic(); got != name {
			t.Errorf("opcode %d: Mnemonic() = %q, want %q", info.Opcode, got, name)
		}
	}
}

func TestIsBranch(t *testing.T) {
	branches := []isa.Opcode{isa.OpJE, isa.OpJNE, isa.OpJ, isa.OpJAL, isa.OpJLEU}
	for _, op := range branches {
		if !op.IsBranch() {
			t.Errorf("opcode %d: expected IsBranch() true", op)
		}
	}

	nonBranches := []isa.Opcode{isa.OpOR, isa.OpADD, isa.OpMOV, isa.OpLW, isa.OpSW}
	for _, op := range nonBranches {
		if op.IsBranch() {
			t.Errorf("opcode %d: expected IsBranch() false", op)
		}
	}
}

func TestMaskPCWraps(t *testing.T) {
	tests := []struct {
		addr     int32
		pcWidth  int
		expected uint32
	}{
		{0, 6, 0},
		{63, 6, 63},
		{64, 6, 0},  // wraps at 2^6
		{65, 6, 1},
		{-1, 6, 63}, // a backward branch off the bottom wraps too
	}

	for _, tt := range tests {
		if got := isa.MaskPC(tt.addr, tt.pcWidth); got != tt.expected {
			t.Errorf("MaskPC(%d, %d) = %d, want %d", tt.addr, tt.pcWidth, got, tt.expected)
		}
	}
}

func TestNopAliasesNegOnR0(t *testing.T) {
	nop := isa.Mnemonics["nop"]
	neg := isa.Mnemonics["neg"]
	if nop.Opcode != neg.Opcode {
		t.Fatalf("expected nop to share neg's opcode, got %d vs %d", nop.Opcode, neg.Opcode)
	}
	if nop.Grammar != isa.GrammarNone {
		t.Fatalf("expected nop to take no operands, got grammar %v", nop.Grammar)
	}
}

func TestReservedOpcodesHaveNoMnemonic(t *testing.T) {
	for _, op := range []isa.Opcode{isa.OpSLL, isa.OpSLR} {
		if m := op.Mnemonic(); m != "" {
			t.Errorf("reserved opcode %d: expected no mnemonic, got %q", op, m)
		}
	}
}
