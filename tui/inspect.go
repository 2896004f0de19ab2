package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/vm"
)

// Inspect is tas's read-only inspector: it wraps a VM and a tview
// application, stepping the FSM one state at a time (F11) or one
// retired instruction at a time (F10), and free-running to the next
// breakpoint (F5). It never writes to CPU or memory state itself -
// every mutation it causes flows through vm.Step.
type Inspect struct {
	VM          *vm.VM
	Breakpoints *BreakpointManager
	Symbols     map[string]uint32 // label -> word offset, from the assembler's symbol table

	App   *tview.Application
	Pages *tview.Pages

	StateView  *tview.TextView
	RegView    *tview.TextView
	MemView    *tview.TextView
	BreakView  *tview.TextView
	OutputView *tview.TextView

	MemoryAddress uint32

	addressToSymbol map[uint32]string
}

// NewInspect builds an inspector over an already-loaded VM.
func NewInspect(v *vm.VM, symbols map[string]uint32) *Inspect {
	ins := &Inspect{
		VM:          v,
		Breakpoints: NewBreakpointManager(),
		Symbols:     symbols,
	}
	ins.buildSymbolIndex()

	ins.App = tview.NewApplication()
	ins.initViews()
	ins.buildLayout()
	ins.setupKeyBindings()

	return ins
}

func (ins *Inspect) buildSymbolIndex() {
	ins.addressToSymbol = make(map[uint32]string, len(ins.Symbols))
	for name, addr := range ins.Symbols {
		ins.addressToSymbol[addr] = name
	}
}

func (ins *Inspect) initViews() {
	ins.StateView = tview.NewTextView().SetDynamicColors(true)
	ins.StateView.SetBorder(true).SetTitle(" FSM ")

	ins.RegView = tview.NewTextView().SetDynamicColors(true)
	ins.RegView.SetBorder(true).SetTitle(" Registers ")

	ins.MemView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	ins.MemView.SetBorder(true).SetTitle(" Memory ")

	ins.BreakView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	ins.BreakView.SetBorder(true).SetTitle(" Breakpoints ")

	ins.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	ins.OutputView.SetBorder(true).SetTitle(" Log ")
}

func (ins *Inspect) buildLayout() {
	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ins.StateView, 0, 1, false).
		AddItem(ins.RegView, 0, 1, false)

	middle := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ins.MemView, 0, 2, false).
		AddItem(ins.BreakView, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 9, 0, false).
		AddItem(middle, 0, 3, false).
		AddItem(ins.OutputView, 6, 0, false)

	ins.Pages = tview.NewPages().AddPage("main", layout, true, true)
}

func (ins *Inspect) setupKeyBindings() {
	ins.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF11:
			ins.tickState()
			return nil
		case tcell.KeyF10:
			ins.stepInstruction()
			return nil
		case tcell.KeyF5:
			ins.runToBreakpoint()
			return nil
		case tcell.KeyCtrlB:
			ins.toggleBreakpointAtPC()
			return nil
		case tcell.KeyCtrlC:
			ins.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			ins.RefreshAll()
			return nil
		}
		return event
	})
}

// tickState advances the FSM by exactly one clock tick (spec §4.8).
func (ins *Inspect) tickState() {
	if err := ins.VM.Step(); err != nil {
		ins.logf("[red]step error:[white] %v", err)
	}
	ins.RefreshAll()
}

// stepInstruction ticks until the current instruction retires
// (WRITEBACK -> IFETCH), so a single keypress covers one full
// instruction regardless of how many FSM states it takes.
func (ins *Inspect) stepInstruction() {
	prev := ins.VM.CPU.State
	for i := 0; i < 16; i++ {
		if ins.VM.State != vm.ExecRunning {
			break
		}
		if err := ins.VM.Step(); err != nil {
			ins.logf("[red]step error:[white] %v", err)
			break
		}
		if prev == vm.StateWriteback && ins.VM.CPU.State == vm.StateIfetch {
			break
		}
		prev = ins.VM.CPU.State
	}
	ins.RefreshAll()
}

// runToBreakpoint free-runs the FSM until it halts, hits the cycle
// limit, errors, or the CPU reaches an IFETCH boundary at a set
// breakpoint address.
func (ins *Inspect) runToBreakpoint() {
	for ins.VM.State == vm.ExecRunning {
		prevState := ins.VM.CPU.State
		if err := ins.VM.Step(); err != nil {
			ins.logf("[red]run error:[white] %v", err)
			break
		}
		if prevState == vm.StateWriteback && ins.VM.CPU.State == vm.StateIfetch {
			if bp := ins.Breakpoints.ProcessHit(ins.VM.CPU.PC); bp != nil {
				ins.logf("breakpoint %d hit at 0x%04X (count %d)", bp.ID, bp.Address, bp.HitCount)
				break
			}
		}
	}
	ins.RefreshAll()
}

func (ins *Inspect) toggleBreakpointAtPC() {
	pc := ins.VM.CPU.PC
	if ins.Breakpoints.Has(pc) {
		_ = ins.Breakpoints.DeleteAt(pc)
		ins.logf("breakpoint cleared at 0x%04X", pc)
	} else {
		bp := ins.Breakpoints.Add(pc, false)
		ins.logf("breakpoint %d set at 0x%04X", bp.ID, pc)
	}
	ins.RefreshAll()
}

func (ins *Inspect) logf(format string, args ...interface{}) {
	fmt.Fprintf(ins.OutputView, format+"\n", args...)
	ins.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current VM state.
func (ins *Inspect) RefreshAll() {
	ins.updateStateView()
	ins.updateRegView()
	ins.updateMemView()
	ins.updateBreakView()
	ins.App.Draw()
}

func (ins *Inspect) updateStateView() {
	cpu := ins.VM.CPU
	var lines []string

	runState := "running"
	switch ins.VM.State {
	case vm.ExecHalted:
		runState = "[red]halted[white]"
	case vm.ExecCycleLimitReached:
		runState = "[yellow]cycle limit[white]"
	case vm.ExecError:
		runState = "[red]error[white]"
	}

	lines = append(lines, fmt.Sprintf("FSM state:  [yellow]%s[white]", cpu.State))
	lines = append(lines, fmt.Sprintf("VM state:   %s", runState))
	lines = append(lines, fmt.Sprintf("PC:         0x%04X%s", cpu.PC, ins.symbolSuffix(cpu.PC)))
	lines = append(lines, fmt.Sprintf("Insn:       0x%04X", cpu.Insn))
	lines = append(lines, fmt.Sprintf("NextInsn:   0x%04X", cpu.NextInsn))
	lines = append(lines, fmt.Sprintf("MemAddr:    0x%04X", cpu.MemAddr))
	lines = append(lines, fmt.Sprintf("Cycles:     %d", cpu.Cycles))

	ins.StateView.SetText(strings.Join(lines, "\n"))
}

func (ins *Inspect) symbolSuffix(addr uint32) string {
	if sym, ok := ins.addressToSymbol[addr]; ok {
		return fmt.Sprintf("  <%s>", sym)
	}
	return ""
}

func (ins *Inspect) updateRegView() {
	cpu := ins.VM.CPU
	var lines []string

	for row := 0; row < isa.NumRegisters; row += 2 {
		left := fmt.Sprintf("r%d: 0x%04X", row, cpu.GetRegister(row))
		line := left
		if row+1 < isa.NumRegisters {
			line += fmt.Sprintf("    r%d: 0x%04X", row+1, cpu.GetRegister(row+1))
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("flags: %s", formatFlags(cpu.Flags)))

	ins.RegView.SetText(strings.Join(lines, "\n"))
}

func formatFlags(f vm.Flags) string {
	return string([]byte{
		flagChar(f.ZF, 'Z'),
		flagChar(f.SF, 'S'),
		flagChar(f.CF, 'C'),
		flagChar(f.OF, 'O'),
	})
}

// flagChar renders c if the flag is set, '-' otherwise.
func flagChar(set bool, c byte) byte {
	if set {
		return c
	}
	return '-'
}

func (ins *Inspect) updateMemView() {
	mem := ins.VM.Memory
	base := ins.MemoryAddress
	var lines []string

	lines = append(lines, fmt.Sprintf("[yellow]base 0x%04X[white]", base))
	for row := 0; row < 16; row++ {
		addr := base + uint32(row*8)
		if int(addr) >= mem.Size() {
			break
		}
		marker := "  "
		if addr == ins.VM.CPU.PC {
			marker = "->"
		}
		var words []string
		for col := 0; col < 8 && int(addr)+col < mem.Size(); col++ {
			w, err := mem.Read(addr + uint32(col))
			if err != nil {
				words = append(words, "????")
				continue
			}
			words = append(words, fmt.Sprintf("%04X", w))
		}
		lines = append(lines, fmt.Sprintf("%s0x%04X: %s%s", marker, addr, strings.Join(words, " "), ins.symbolSuffix(addr)))
	}

	ins.MemView.SetText(strings.Join(lines, "\n"))
}

func (ins *Inspect) updateBreakView() {
	bps := ins.Breakpoints.All()
	if len(bps) == 0 {
		ins.BreakView.SetText("[yellow]none set[white]\n\nCtrl+B toggles at PC")
		return
	}

	var lines []string
	for _, bp := range bps {
		status := "[green]on[white]"
		if !bp.Enabled {
			status = "[red]off[white]"
		}
		lines = append(lines, fmt.Sprintf("%d: 0x%04X %s (hits %d)%s", bp.ID, bp.Address, status, bp.HitCount, ins.symbolSuffix(bp.Address)))
	}
	ins.BreakView.SetText(strings.Join(lines, "\n"))
}

// Run starts the inspector's event loop.
func (ins *Inspect) Run() error {
	ins.RefreshAll()
	ins.logf("[green]tas inspect[white] - F11 tick, F10 step, F5 run to breakpoint, Ctrl+B toggle breakpoint, Ctrl+C quit")
	return ins.App.SetRoot(ins.Pages, true).Run()
}
