package parser

import "fmt"

// Symbol is a label: a name bound to a program-word offset, per spec
// §3's "Label: {name, off}" entity. Labels persist until program
// emission and must be unique.
type Symbol struct {
	Name    string
	Off     int
	Defined bool
	Pos     Position
}

// SymbolTable holds every label defined during pass 1.
type SymbolTable struct {
	symbols map[string]*Symbol
	order   []string // definition order, for deterministic diagnostics
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define binds name to off at pos. Redefining an already-defined name
// is a DuplicateLabel condition (spec §3's "each name must be unique").
func (st *SymbolTable) Define(name string, off int, pos Position) error {
	if sym, exists := st.symbols[name]; exists && sym.Defined {
		return fmt.Errorf("label %q already defined at %s", name, sym.Pos)
	}
	st.symbols[name] = &Symbol{Name: name, Off: off, Defined: true, Pos: pos}
	st.order = append(st.order, name)
	return nil
}

// Lookup returns the symbol named name, if any.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// Get returns the offset bound to name, or an error if it was never defined.
func (st *SymbolTable) Get(name string) (int, error) {
	sym, ok := st.symbols[name]
	if !ok || !sym.Defined {
		return 0, fmt.Errorf("undefined label: %q", name)
	}
	return sym.Off, nil
}

// All returns every defined label as name -> offset (a map, so it has
// no order). Used by tas's --symbols loader to annotate addresses.
func (st *SymbolTable) All() map[string]int {
	out := make(map[string]int, len(st.order))
	for _, name := range st.order {
		if sym := st.symbols[name]; sym.Defined {
			out[name] = sym.Off
		}
	}
	return out
}
