package vm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FlagChangeEntry represents a single flag change event
type FlagChangeEntry struct {
	Sequence    uint64 // Instruction sequence number
	PC          uint32 // Program counter
	Instruction string // Instruction that changed flags
	OldFlags    Flags  // Flags before instruction
	NewFlags    Flags  // Flags after instruction
	Changed     string // Which flags changed (e.g., "ZS")
}

// FlagTrace tracks ZF/SF/CF/OF changes across executed instructions.
type FlagTrace struct {
	Enabled bool
	Writer  io.Writer

	// Tracking
	entries    []FlagChangeEntry
	maxEntries int
	lastFlags  Flags

	// Statistics
	totalChanges uint64
	zChanges     uint64
	sChanges     uint64
	cChanges     uint64
	oChanges     uint64

	// Symbol resolution
	symbols *SymbolResolver // Symbol resolver for address annotation
}

// NewFlagTrace creates a new flag trace tracker
func NewFlagTrace(writer io.Writer) *FlagTrace {
	return &FlagTrace{
		Enabled:    true,
		Writer:     writer,
		entries:    make([]FlagChangeEntry, 0, 1000),
		maxEntries: 100000,
	}
}

// LoadSymbols loads a symbol table for address annotation
func (f *FlagTrace) LoadSymbols(symbols map[string]uint32) {
	f.symbols = NewSymbolResolver(symbols)
}

// Start starts flag tracing
func (f *FlagTrace) Start(initialFlags Flags) {
	f.entries = f.entries[:0]
	f.lastFlags = initialFlags
	f.totalChanges = 0
	f.zChanges = 0
	f.sChanges = 0
	f.cChanges = 0
	f.oChanges = 0
}

// RecordFlags records the current flag state
func (f *FlagTrace) RecordFlags(sequence uint64, pc uint32, instruction string, newFlags Flags) {
	if !f.Enabled {
		return
	}

	changed := f.detectChanges(f.lastFlags, newFlags)
	if changed == "" {
		return
	}

	if f.maxEntries > 0 && len(f.entries) >= f.maxEntries {
		return
	}

	entry := FlagChangeEntry{
		Sequence:    sequence,
		PC:          pc,
		Instruction: instruction,
		OldFlags:    f.lastFlags,
		NewFlags:    newFlags,
		Changed:     changed,
	}

	f.entries = append(f.entries, entry)
	f.updateStatistics(f.lastFlags, newFlags)
	f.lastFlags = newFlags
	f.totalChanges++
}

// detectChanges returns a string indicating which flags changed
func (f *FlagTrace) detectChanges(old, new Flags) string {
	var changes []string

	if old.ZF != new.ZF {
		changes = append(changes, "Z")
	}
	if old.SF != new.SF {
		changes = append(changes, "S")
	}
	if old.CF != new.CF {
		changes = append(changes, "C")
	}
	if old.OF != new.OF {
		changes = append(changes, "O")
	}

	return strings.Join(changes, "")
}

// updateStatistics updates flag change statistics
func (f *FlagTrace) updateStatistics(old, new Flags) {
	if old.ZF != new.ZF {
		f.zChanges++
	}
	if old.SF != new.SF {
		f.sChanges++
	}
	if old.CF != new.CF {
		f.cChanges++
	}
	if old.OF != new.OF {
		f.oChanges++
	}
}

// GetEntries returns all flag trace entries
func (f *FlagTrace) GetEntries() []FlagChangeEntry {
	return f.entries
}

// Flush writes flag trace report to the writer
func (f *FlagTrace) Flush() error {
	if f.Writer == nil {
		return nil
	}

	var header strings.Builder
	header.WriteString("Flag Change Trace Report\n")
	header.WriteString("========================\n\n")
	header.WriteString("Statistics:\n")
	header.WriteString(fmt.Sprintf("  Total Changes:  %d\n", f.totalChanges))
	header.WriteString(fmt.Sprintf("  ZF changes:     %d\n", f.zChanges))
	header.WriteString(fmt.Sprintf("  SF changes:     %d\n", f.sChanges))
	header.WriteString(fmt.Sprintf("  CF changes:     %d\n", f.cChanges))
	header.WriteString(fmt.Sprintf("  OF changes:     %d\n\n", f.oChanges))

	if _, err := f.Writer.Write([]byte(header.String())); err != nil {
		return err
	}

	if _, err := f.Writer.Write([]byte("Flag Changes:\n")); err != nil {
		return err
	}
	if _, err := f.Writer.Write([]byte("-------------\n")); err != nil {
		return err
	}

	for _, entry := range f.entries {
		line := f.formatEntry(entry)
		if _, err := f.Writer.Write([]byte(line)); err != nil {
			return err
		}
	}

	return nil
}

// formatEntry formats a flag change entry for output
func (f *FlagTrace) formatEntry(entry FlagChangeEntry) string {
	oldStr := f.formatFlags(entry.OldFlags)
	highlightedNew := f.highlightChanges(entry.NewFlags, entry.Changed)

	pcStr := fmt.Sprintf("0x%04X", entry.PC)
	if f.symbols != nil && f.symbols.HasSymbols() {
		pcStr = f.symbols.FormatAddressCompact(entry.PC)
	}

	return fmt.Sprintf("[%06d] %-20s: %-30s  %s -> %s  (changed: %s)\n",
		entry.Sequence,
		pcStr,
		entry.Instruction,
		oldStr,
		highlightedNew,
		entry.Changed)
}

// formatFlags formats ZF/SF/CF/OF as a fixed 4-character string
func (f *FlagTrace) formatFlags(flags Flags) string {
	result := make([]byte, 4)
	result[0] = flagChar(flags.ZF, 'Z')
	result[1] = flagChar(flags.SF, 'S')
	result[2] = flagChar(flags.CF, 'C')
	result[3] = flagChar(flags.OF, 'O')
	return string(result)
}

func flagChar(set bool, c byte) byte {
	if set {
		return c
	}
	return '-'
}

// highlightChanges highlights changed flags in the new flags string
func (f *FlagTrace) highlightChanges(flags Flags, changed string) string {
	var sb strings.Builder
	sb.Grow(8)

	write := func(set bool, c byte, letter string) {
		sb.WriteByte(flagChar(set, c))
		if strings.Contains(changed, letter) {
			sb.WriteByte('*')
		}
	}

	write(flags.ZF, 'Z', "Z")
	write(flags.SF, 'S', "S")
	write(flags.CF, 'C', "C")
	write(flags.OF, 'O', "O")

	return sb.String()
}

// ExportJSON exports flag trace data as JSON
func (f *FlagTrace) ExportJSON(w io.Writer) error {
	data := map[string]interface{}{
		"total_changes": f.totalChanges,
		"z_changes":     f.zChanges,
		"s_changes":     f.sChanges,
		"c_changes":     f.cChanges,
		"o_changes":     f.oChanges,
		"entries":       f.entries,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// String returns a formatted string representation
func (f *FlagTrace) String() string {
	var sb strings.Builder

	sb.WriteString("Flag Change Summary\n")
	sb.WriteString("===================\n\n")

	sb.WriteString(fmt.Sprintf("Total Changes: %d\n", f.totalChanges))
	sb.WriteString(fmt.Sprintf("ZF changes:    %d\n", f.zChanges))
	sb.WriteString(fmt.Sprintf("SF changes:    %d\n", f.sChanges))
	sb.WriteString(fmt.Sprintf("CF changes:    %d\n", f.cChanges))
	sb.WriteString(fmt.Sprintf("OF changes:    %d\n", f.oChanges))

	return sb.String()
}
