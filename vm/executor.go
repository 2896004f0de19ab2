package vm

import (
	"fmt"

	"github.com/tangle-project/tangle/isa"
)

// instructionScratch holds per-instruction bookkeeping that spans
// several FSM states (decode result, the PC the instruction started
// at, and any pending memory access). It is not part of the CPU's
// architectural state - a debugger dump of "the machine" never needs it.
type instructionScratch struct {
	decoded Decoded
	savedPC uint32

	pendingLoad      bool
	pendingLoadReg   int
	pendingStore     bool
	pendingStoreAddr uint32
	pendingStoreVal  uint16
}

// Step advances the CPU's FSM by exactly one clock tick (spec §4.8).
// Driving it in a loop executes the program; callers may observe
// register/memory state between ticks.
func (vm *VM) Step() error {
	cpu := vm.CPU
	mem := vm.Memory
	s := &vm.scratch

	switch cpu.State {
	case StateIdle:
		cpu.State = StateWait

	case StateWait:
		word, err := mem.Read(cpu.PC)
		if err != nil {
			return err
		}
		cpu.Insn = word
		cpu.MemAddr = cpu.MaskedPC(int32(cpu.PC) + 1)
		cpu.State = StateIfetch

	case StateIfetch:
		s.decoded = Decode(cpu.Insn, cpu.Flags)
		s.savedPC = cpu.PC
		switch s.decoded.NextPC {
		case NextPCImm:
			cpu.MemAddr = cpu.MaskedPC(int32(cpu.PC) + s.decoded.Imm)
		case NextPCReg:
			cpu.MemAddr = cpu.MaskedPC(int32(cpu.GetRegister(s.decoded.BranchReg)))
		}
		cpu.State = StateExecute

	case StateExecute:
		vm.execute(s)

	case StateWaitMem:
		vm.waitMem(s)

	case StateWaitALU:
		cpu.PC = cpu.MaskedPC(int32(cpu.PC) + 1)
		cpu.State = StateWriteback

	case StateWriteback:
		vm.writeback(s)
	}

	cpu.Cycles++
	if vm.MaxCycles > 0 && cpu.Cycles >= vm.MaxCycles {
		vm.State = ExecCycleLimitReached
	}

	return nil
}

func (vm *VM) execute(s *instructionScratch) {
	cpu := vm.CPU
	d := s.decoded

	switch {
	case d.NextPC != NextPCInc:
		// Taken branch, J, or JAL: the PC moves to the address IFETCH
		// already computed into MemAddr.
		cpu.PC = cpu.MemAddr
		if d.RegWE {
			// JAL: link register gets the instruction-after-JAL address.
			cpu.SetRegister(d.RegDst, uint16(cpu.MaskedPC(int32(s.savedPC)+1)))
		}
		cpu.State = StateWaitMem

	case d.InsnType == InsnMemLW:
		base := cpu.GetRegister(d.RegSrc)
		addr := cpu.MaskedPC(int32(base) + d.Imm)
		s.pendingLoad = true
		s.pendingLoadReg = d.RegDst
		cpu.MemAddr = addr
		cpu.State = StateWaitMem

	case d.InsnType == InsnMemSW:
		base := cpu.GetRegister(d.RegSrc)
		addr := cpu.MaskedPC(int32(base) + d.Imm)
		s.pendingStore = true
		s.pendingStoreAddr = addr
		s.pendingStoreVal = cpu.GetRegister(d.RegDst)
		cpu.MemAddr = addr
		cpu.State = StateWaitMem

	default:
		// ALU ops, and not-taken branches (ALUEn clear: no ALU op, no
		// flag update).
		if d.ALUEn {
			a := cpu.GetRegister(d.RegDst)
			b := aluSecondOperand(cpu, d)
			result := execALU(d.ALUOp, a, b, &cpu.Flags)
			if d.RegWE {
				cpu.SetRegister(d.RegDst, result)
			}
		}
		cpu.PC = cpu.MaskedPC(int32(cpu.PC) + 1)

		// No op reaches WAIT_ALU in this implementation: execALU
		// computes every op, SLL/SLR included, in this one cycle. Fetch
		// the next instruction directly since WAIT_MEM is skipped.
		word, err := vm.Memory.Read(cpu.MaskedPC(int32(cpu.PC)))
		if err == nil {
			cpu.NextInsn = word
		}
		cpu.State = StateWriteback
	}
}

func aluSecondOperand(cpu *CPU, d Decoded) uint16 {
	if d.InsnType == InsnAMIRegReg {
		return cpu.GetRegister(d.RegSrc)
	}
	return uint16(d.Imm)
}

func (vm *VM) waitMem(s *instructionScratch) {
	cpu := vm.CPU

	switch {
	case s.pendingStore:
		// Store-to-self forwarding (spec §4.8): if the address being
		// stored to is the very next instruction fetch, forward the
		// stored value instead of reading memory that hasn't been
		// written yet.
		nextFetch := cpu.MaskedPC(int32(cpu.PC) + 1)
		if s.pendingStoreAddr == nextFetch {
			cpu.NextInsn = s.pendingStoreVal
		} else if word, err := vm.Memory.Read(nextFetch); err == nil {
			cpu.NextInsn = word
		}
		cpu.PC = nextFetch

	case s.pendingLoad:
		nextFetch := cpu.MaskedPC(int32(cpu.PC) + 1)
		if word, err := vm.Memory.Read(nextFetch); err == nil {
			cpu.NextInsn = word
		}
		cpu.PC = nextFetch

	default:
		// Taken branch / J / JAL: MemAddr already holds the new PC.
		if word, err := vm.Memory.Read(cpu.MemAddr); err == nil {
			cpu.NextInsn = word
		}
	}

	cpu.State = StateWriteback
}

func (vm *VM) writeback(s *instructionScratch) {
	cpu := vm.CPU

	if s.pendingStore {
		_ = vm.Memory.Write(s.pendingStoreAddr, s.pendingStoreVal)
		if vm.MemTrace != nil {
			vm.MemTrace.RecordWrite(cpu.Cycles, s.savedPC, s.pendingStoreAddr, uint32(s.pendingStoreVal), "WORD")
		}
	}
	if s.pendingLoad {
		if word, err := vm.Memory.Read(cpu.MemAddr); err == nil {
			cpu.SetRegister(s.pendingLoadReg, word)
			if vm.MemTrace != nil {
				vm.MemTrace.RecordRead(cpu.Cycles, s.savedPC, cpu.MemAddr, uint32(word), "WORD")
			}
		}
	}

	vm.instrumentRetire(s)

	if vm.haltOnSelfBranch(s) {
		vm.State = ExecHalted
	}

	cpu.Insn = cpu.NextInsn
	cpu.MemAddr = cpu.MaskedPC(int32(cpu.PC) + 1)
	cpu.State = StateIfetch

	*s = instructionScratch{}
}

// instrumentRetire feeds the optional diagnostic trackers; every one of
// them is nil unless a caller opted in, so this is a no-op by default.
func (vm *VM) instrumentRetire(s *instructionScratch) {
	cpu := vm.CPU
	d := s.decoded

	if vm.Stats != nil {
		vm.Stats.RecordInstruction(d.Mnemonic, s.savedPC, 1)
		if d.Opcode.IsBranch() && d.Opcode != isa.OpJAL {
			vm.Stats.RecordBranch(d.NextPC != NextPCInc)
		}
		if d.Opcode == isa.OpJAL {
			vm.Stats.RecordFunctionCall(cpu.PC, d.Mnemonic)
		}
	}
	if vm.Coverage != nil {
		vm.Coverage.RecordExecution(s.savedPC, cpu.Cycles)
	}
	if vm.FlagTrace != nil {
		vm.FlagTrace.RecordFlags(cpu.Cycles, s.savedPC, d.Mnemonic, cpu.Flags)
	}
	if vm.Trace != nil {
		vm.Trace.RecordInstruction(vm, d.Mnemonic)
	}
	if vm.RegTrace != nil {
		vm.recordRegisterAccess(s)
	}
}

// recordRegisterAccess reports the register file touches implied by the
// decode: a read of RegSrc for reg/reg AMI ops, and a write of RegDst
// whenever the instruction actually writes back. The register's value
// before the write is not kept, so every write is recorded with an old
// value of 0.
func (vm *VM) recordRegisterAccess(s *instructionScratch) {
	cpu := vm.CPU
	d := s.decoded
	seq := cpu.Cycles
	pc := s.savedPC

	if d.InsnType == InsnAMIRegReg {
		name := fmt.Sprintf("R%d", d.RegSrc)
		vm.RegTrace.RecordRead(seq, pc, name, uint32(cpu.GetRegister(d.RegSrc)))
	}
	if d.RegWE && d.RegDst != 0 {
		name := fmt.Sprintf("R%d", d.RegDst)
		newValue := uint32(cpu.GetRegister(d.RegDst))
		vm.RegTrace.RecordWrite(seq, pc, name, 0, newValue)
	}
}

// haltOnSelfBranch implements the halt-address sentinel: a taken,
// unconditional branch whose target is its own address (spec §5's
// "halt-address sentinel" choice; Tangle defines no HALT opcode).
func (vm *VM) haltOnSelfBranch(s *instructionScratch) bool {
	d := s.decoded
	return d.Opcode == isa.OpJ && d.NextPC != NextPCInc && vm.CPU.MemAddr == s.savedPC
}
