package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSource writes src to a temp .s file and returns its path.
func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

// TestAssembleThenRunMemoryRoundTrip is spec.md §8 scenario 6: movlo/movhi
// build an address, sw stores a register to it, lw loads it back.
func TestAssembleThenRunMemoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "roundtrip.s", "movlo %r1,$7\nmovhi %r2,$0\nsw %r1, $0(%r2)\nlw %r3, $0(%r2)\nj $0\n")
	hexPath := filepath.Join(dir, "out.hex")

	require.NoError(t, assembleFile(src, hexPath))

	machine, err := loadAndRunHex(hexPath, runOpts{})
	require.NoError(t, err)

	require.EqualValues(t, 7, machine.CPU.GetRegister(3))
	word, err := machine.Memory.Read(0)
	require.NoError(t, err)
	require.EqualValues(t, 7, word)
}

// TestAssembleThenRunMovhiMovlo is spec.md §8 scenario 5: movhi/movlo
// build r1 = 0xABCD without disturbing flags.
func TestAssembleThenRunMovhiMovlo(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "movhilo.s", "movhi %r1, $0xAB\nmovlo %r1, $0xCD\nj $0\n")
	hexPath := filepath.Join(dir, "out.hex")

	require.NoError(t, assembleFile(src, hexPath))

	machine, err := loadAndRunHex(hexPath, runOpts{})
	require.NoError(t, err)

	require.EqualValues(t, 0xABCD, machine.CPU.GetRegister(1))
	require.False(t, machine.CPU.Flags.ZF)
	require.False(t, machine.CPU.Flags.SF)
	require.False(t, machine.CPU.Flags.CF)
	require.False(t, machine.CPU.Flags.OF)
}

// TestAssembleRejectsOutOfRangeBranch is spec.md §8's law: a program
// with a displacement out of range produces a diagnostic and no hex
// file is written.
func TestAssembleRejectsOutOfRangeBranch(t *testing.T) {
	dir := t.TempDir()
	var src string
	src += "future:\n"
	for i := 0; i < 200; i++ {
		src += "nop\n"
	}
	src += "jne future\n"
	path := writeSource(t, dir, "toofar.s", src)
	hexPath := filepath.Join(dir, "out.hex")

	err := assembleFile(path, hexPath)
	require.Error(t, err)
	require.NoFileExists(t, hexPath)
}

func TestRunWithMemTraceFileRecordsAccesses(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "memtrace.s", "movlo %r1,$7\nmovhi %r2,$0\nsw %r1, $0(%r2)\nlw %r3, $0(%r2)\nj $0\n")
	hexPath := filepath.Join(dir, "out.hex")
	require.NoError(t, assembleFile(src, hexPath))

	memTracePath := filepath.Join(dir, "mem.trace")
	machine, err := loadAndRunHex(hexPath, runOpts{memTraceFile: memTracePath})
	require.NoError(t, err)
	require.EqualValues(t, 7, machine.CPU.GetRegister(3))

	contents, err := os.ReadFile(memTracePath)
	require.NoError(t, err)
	require.NotEmpty(t, contents)
}

func TestDisassembleRoundTripsAssembledWord(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "single.s", "or %r1, $5\n")
	hexPath := filepath.Join(dir, "out.hex")
	require.NoError(t, assembleFile(src, hexPath))
	require.NoError(t, disassembleFile(hexPath))
}
