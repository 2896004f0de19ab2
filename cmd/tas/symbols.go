package main

import (
	"fmt"

	"github.com/tangle-project/tangle/parser"
)

// loadSymbolsFile parses srcPath (the original .s source, if the
// caller has one alongside a hex image) and returns its label table as
// label -> word offset, for trace/inspect address annotation. An empty
// path is not an error: every instrumentation tracker and tui.Inspect
// work fine with no symbols at all, just without label annotations.
func loadSymbolsFile(srcPath string) (map[string]uint32, error) {
	if srcPath == "" {
		return map[string]uint32{}, nil
	}

	program, _, err := parser.ParseFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("parsing symbols from %s: %w", srcPath, err)
	}

	syms := make(map[string]uint32, len(program.SymbolTable.All()))
	for name, off := range program.SymbolTable.All() {
		syms[name] = uint32(off)
	}
	return syms, nil
}
