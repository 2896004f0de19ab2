package vm

import (
	"io"
	"os"
)

// VM wires a CPU to its Memory and drives the clock. Both halves of
// the core are single-threaded (spec §5): no shared mutable state
// crosses a goroutine boundary, and callers must not interleave two
// VMs over the same CPU/Memory pair.
type VM struct {
	CPU    *CPU
	Memory *Memory
	State  ExecutionState
	Mode   ExecutionMode

	MaxCycles uint64

	OutputWriter io.Writer

	// Optional instrumentation, all nil by default. A caller (the CLI's
	// run command, from its --*-file flags or the config file) wires
	// these in before Run.
	Stats    *PerformanceStatistics
	Trace    *ExecutionTrace
	MemTrace *MemoryTrace
	RegTrace  *RegisterTrace
	FlagTrace *FlagTrace
	Coverage  *CodeCoverage

	scratch instructionScratch
}

// NewVM creates a VM with a fresh CPU and zeroed memory sized to
// 2^pcWidth words (spec §3).
func NewVM(pcWidth int) *VM {
	return &VM{
		CPU:          NewCPU(pcWidth),
		Memory:       NewMemory(pcWidth),
		State:        ExecRunning,
		Mode:         ModeRun,
		OutputWriter: os.Stdout,
	}
}

// Reset returns the CPU to its power-on state without reallocating
// memory; memory contents are left as loaded (callers that want a
// clean reload should load the hex image again).
func (vm *VM) Reset() {
	vm.CPU.Reset()
	vm.State = ExecRunning
	vm.scratch = instructionScratch{}
}

// Run steps the FSM until it halts (spec §5's halt-address sentinel),
// hits the configured cycle limit, or a memory access fails.
func (vm *VM) Run() error {
	for vm.State == ExecRunning {
		if err := vm.Step(); err != nil {
			vm.State = ExecError
			return err
		}
	}
	return nil
}
