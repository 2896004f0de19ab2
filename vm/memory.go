package vm

import "fmt"

// Memory is Tangle's unified instruction/data memory: 2^PCWidth
// 16-bit words (spec §3). Unlike a segmented architecture, every
// address in range is both readable, writable, and executable - there
// is no permission model to enforce.
type Memory struct {
	Words []uint16

	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// NewMemory allocates a zero-initialized memory of 2^pcWidth words.
func NewMemory(pcWidth int) *Memory {
	return &Memory{
		Words: make([]uint16, 1<<uint(pcWidth)),
	}
}

// Read returns the word at addr.
func (m *Memory) Read(addr uint32) (uint16, error) {
	if int(addr) >= len(m.Words) {
		return 0, fmt.Errorf("memory access violation: address 0x%04x is not mapped", addr)
	}
	m.AccessCount++
	m.ReadCount++
	return m.Words[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr uint32, value uint16) error {
	if int(addr) >= len(m.Words) {
		return fmt.Errorf("memory access violation: address 0x%04x is not mapped", addr)
	}
	m.AccessCount++
	m.WriteCount++
	m.Words[addr] = value
	return nil
}

// Size returns the number of addressable words.
func (m *Memory) Size() int {
	return len(m.Words)
}
