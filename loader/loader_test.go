package loader

import (
	"strings"
	"testing"

	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/vm"
)

func TestLoadHexSkipsCommentLine(t *testing.T) {
	image := "// prog.s file\n0105\n3a60\n"
	machine := vm.NewVM(isa.DefaultPCWidth)

	if err := LoadHex(strings.NewReader(image), machine); err != nil {
		t.Fatalf("LoadHex returned error: %v", err)
	}

	w0, err := machine.Memory.Read(0)
	if err != nil || w0 != 0x0105 {
		t.Errorf("word 0 = 0x%04x, err=%v; want 0x0105", w0, err)
	}
	w1, err := machine.Memory.Read(1)
	if err != nil || w1 != 0x3A60 {
		t.Errorf("word 1 = 0x%04x, err=%v; want 0x3A60", w1, err)
	}
}

func TestLoadHexRejectsBadWord(t *testing.T) {
	image := "// prog.s file\nzzzz\n"
	machine := vm.NewVM(isa.DefaultPCWidth)
	if err := LoadHex(strings.NewReader(image), machine); err == nil {
		t.Fatalf("expected an error for a non-hex line")
	}
}
