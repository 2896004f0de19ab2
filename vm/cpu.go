package vm

import "github.com/tangle-project/tangle/isa"

// CPU is Tangle's register file, flags, program counter, and FSM
// scratch (spec §3's "CPU model entities"). It does not own memory
// directly; VM wires a CPU to a Memory and drives the clock.
type CPU struct {
	R       [isa.NumRegisters]uint16
	PC      uint32
	Flags   Flags
	PCWidth int

	Cycles uint64

	// Pipeline scratch (spec §3, §4.8).
	Insn     uint16
	NextInsn uint16
	MemAddr  uint32
	State    FSMState
}

// NewCPU creates a CPU with the given PC width (spec §3: configurable,
// default isa.DefaultPCWidth, max isa.MaxPCWidth).
func NewCPU(pcWidth int) *CPU {
	return &CPU{PCWidth: pcWidth, State: StateIdle}
}

// Reset returns the CPU to its power-on state: all registers, flags,
// and the PC zeroed, FSM back at IDLE.
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.PC = 0
	c.Flags = Flags{}
	c.Cycles = 0
	c.Insn = 0
	c.NextInsn = 0
	c.MemAddr = 0
	c.State = StateIdle
}

// GetRegister reads register reg; r0 always reads as zero (spec §3).
func (c *CPU) GetRegister(reg int) uint16 {
	if reg == 0 {
		return 0
	}
	return c.R[reg]
}

// SetRegister writes value to register reg; writes to r0 are
// suppressed (spec §3, §4.8).
func (c *CPU) SetRegister(reg int, value uint16) {
	if reg == 0 {
		return
	}
	c.R[reg] = value
}

// MaskedPC returns addr masked to the CPU's configured PC width (spec
// §3's invariant that the PC never leaves [0, 2^PCWidth-1]).
func (c *CPU) MaskedPC(addr int32) uint32 {
	return isa.MaskPC(addr, c.PCWidth)
}
