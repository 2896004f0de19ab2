// Package tui implements tas's read-only inspector (SPEC_FULL §E5): a
// terminal panel that steps the reference CPU model one FSM state at a
// time and renders registers, flags, memory, and the pending
// instruction. It never mutates architectural state beyond what
// stepping the VM itself does.
package tui

import (
	"fmt"
	"sync"
)

// Breakpoint pauses inspect's free-run mode at a given instruction
// address. Unlike the teacher's debugger, inspect has no expression
// evaluator, so a breakpoint is unconditional: it fires whenever the
// CPU's PC equals Address at an IFETCH boundary.
type Breakpoint struct {
	ID        int
	Address   uint32
	Enabled   bool
	Temporary bool // removed after its first hit
	HitCount  int
}

// BreakpointManager tracks the set of addresses inspect's free-run
// mode should pause at.
type BreakpointManager struct {
	mu          sync.RWMutex
	breakpoints map[uint32]*Breakpoint
	nextID      int
}

// NewBreakpointManager returns an empty breakpoint set.
func NewBreakpointManager() *BreakpointManager {
	return &BreakpointManager{
		breakpoints: make(map[uint32]*Breakpoint),
		nextID:      1,
	}
}

// Add registers a breakpoint at address. If one is already there, it is
// re-enabled and takes the new temporary setting, keeping its ID and
// hit count.
func (bm *BreakpointManager) Add(address uint32, temporary bool) *Breakpoint {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bp, exists := bm.breakpoints[address]; exists {
		bp.Enabled = true
		bp.Temporary = temporary
		return bp
	}

	bp := &Breakpoint{
		ID:        bm.nextID,
		Address:   address,
		Enabled:   true,
		Temporary: temporary,
	}
	bm.breakpoints[address] = bp
	bm.nextID++
	return bp
}

// DeleteAt removes the breakpoint at address, if any.
func (bm *BreakpointManager) DeleteAt(address uint32) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if _, exists := bm.breakpoints[address]; !exists {
		return fmt.Errorf("no breakpoint at address 0x%04X", address)
	}
	delete(bm.breakpoints, address)
	return nil
}

// Get returns the breakpoint at address, or nil.
func (bm *BreakpointManager) Get(address uint32) *Breakpoint {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return bm.breakpoints[address]
}

// All returns every breakpoint, in no particular order.
func (bm *BreakpointManager) All() []*Breakpoint {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	result := make([]*Breakpoint, 0, len(bm.breakpoints))
	for _, bp := range bm.breakpoints {
		result = append(result, bp)
	}
	return result
}

// Clear removes every breakpoint.
func (bm *BreakpointManager) Clear() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.breakpoints = make(map[uint32]*Breakpoint)
}

// Has reports whether a breakpoint exists at address.
func (bm *BreakpointManager) Has(address uint32) bool {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	_, exists := bm.breakpoints[address]
	return exists
}

// Count returns the number of breakpoints currently set.
func (bm *BreakpointManager) Count() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return len(bm.breakpoints)
}

// ProcessHit increments the hit counter for the breakpoint at address
// and removes it if temporary. Returns a copy safe to read after the
// lock is released, or nil if nothing is set there.
func (bm *BreakpointManager) ProcessHit(address uint32) *Breakpoint {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	bp, exists := bm.breakpoints[address]
	if !exists || !bp.Enabled {
		return nil
	}

	bp.HitCount++
	result := *bp

	if bp.Temporary {
		delete(bm.breakpoints, address)
	}

	return &result
}
