package vm

import (
	"testing"

	"github.com/tangle-project/tangle/isa"
)

// stepInstruction steps the FSM until it completes exactly one
// instruction (a WRITEBACK -> IFETCH transition), matching the
// multi-cycle shape of spec §4.8.
func stepInstruction(t *testing.T, v *VM) {
	t.Helper()
	prev := v.CPU.State
	for i := 0; i < 20; i++ {
		if err := v.Step(); err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
		if prev == StateWriteback && v.CPU.State == StateIfetch {
			return
		}
		prev = v.CPU.State
	}
	t.Fatal("instruction did not retire within 20 ticks")
}

func loadWords(v *VM, words ...uint16) {
	for i, w := range words {
		_ = v.Memory.Write(uint32(i), w)
	}
}

func TestMovhiMovloComposeRegister(t *testing.T) {
	v := NewVM(isa.DefaultPCWidth)
	// movhi %r1, $0xAB ; movlo %r1, $0xCD
	loadWords(v, 0x51AB, 0x59CD)

	stepInstruction(t, v)
	stepInstruction(t, v)

	if got := v.CPU.GetRegister(1); got != 0xABCD {
		t.Errorf("r1 = 0x%04x, want 0xABCD", got)
	}
	if v.CPU.Flags != (Flags{}) {
		t.Errorf("flags changed by movhi/movlo: %+v", v.CPU.Flags)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	v := NewVM(isa.DefaultPCWidth)
	// movlo %r1,$7 ; movhi %r2,$0 ; sw %r1,$0(%r2) ; lw %r3,$0(%r2)
	loadWords(v, 0x5907, 0x5200, 0xD140, 0xCB40)

	for i := 0; i < 4; i++ {
		stepInstruction(t, v)
	}

	if got := v.CPU.GetRegister(3); got != 7 {
		t.Errorf("r3 = %d, want 7", got)
	}
	word, err := v.Memory.Read(0)
	if err != nil || word != 7 {
		t.Errorf("memory[0] = %d, err=%v; want 7", word, err)
	}
}

func TestR0NeverChanges(t *testing.T) {
	v := NewVM(isa.DefaultPCWidth)
	// movlo %r1,$5 ; add %r0,%r1
	loadWords(v, 0x5905, 0x3820)

	stepInstruction(t, v)
	stepInstruction(t, v)

	if got := v.CPU.GetRegister(0); got != 0 {
		t.Errorf("r0 = %d, want 0", got)
	}
}

func TestCmpLeavesRegistersUnchanged(t *testing.T) {
	v := NewVM(isa.DefaultPCWidth)
	// movlo %r1,$5 ; movlo %r2,$5 ; cmp %r1,%r2
	loadWords(v, 0x5905, 0x5A05, 0x6140)

	for i := 0; i < 3; i++ {
		stepInstruction(t, v)
	}

	if got := v.CPU.GetRegister(1); got != 5 {
		t.Errorf("r1 changed by cmp: %d", got)
	}
	if got := v.CPU.GetRegister(2); got != 5 {
		t.Errorf("r2 changed by cmp: %d", got)
	}
	if !v.CPU.Flags.ZF {
		t.Errorf("expected ZF set after cmp of equal registers")
	}
}

func TestConditionalBranchSkipsInstruction(t *testing.T) {
	v := NewVM(isa.DefaultPCWidth)
	// movlo %r1,$5 ; movlo %r2,$5 ; cmp %r1,%r2 ; je +2 ; movlo %r3,$99 ; movlo %r4,$1
	loadWords(v, 0x5905, 0x5A05, 0x6140, 0x6802, 0x5B63, 0x5C01)

	for i := 0; i < 5; i++ {
		stepInstruction(t, v)
	}

	if got := v.CPU.GetRegister(3); got != 0 {
		t.Errorf("r3 = %d, want 0 (instruction should have been skipped)", got)
	}
	if got := v.CPU.GetRegister(4); got != 1 {
		t.Errorf("r4 = %d, want 1", got)
	}
}
