package hexwriter

import (
	"bytes"
	"testing"

	"github.com/tangle-project/tangle/encoder"
	"github.com/tangle-project/tangle/isa"
)

func TestWriteFormat(t *testing.T) {
	records := []*encoder.Record{
		{Word: 0x0105, Class: isa.ClassAMI},
		{Word: 0x3A60, Class: isa.ClassAMI},
	}

	var buf bytes.Buffer
	if err := Write(&buf, "prog.s", records); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	want := "// prog.s file\n0105\n3a60\n"
	if buf.String() != want {
		t.Errorf("Write output = %q, want %q", buf.String(), want)
	}
}

func TestWriteEmptyProgram(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "empty.s", nil); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	want := "// empty.s file\n"
	if buf.String() != want {
		t.Errorf("Write output for empty program = %q, want %q", buf.String(), want)
	}
}
