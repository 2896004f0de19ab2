package parser_test

import (
	"testing"

	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/parser"
)

func TestLexerBasicTokens(t *testing.T) {
	lexer := parser.NewLexer("or %r1, $5\n", "test.s")

	expected := []parser.TokenType{
		parser.TokenWord,    // or
		parser.TokenPercent, // %
		parser.TokenWord,    // r1
		parser.TokenComma,   // ,
		parser.TokenDollar,  // $
		parser.TokenWord,    // 5
		parser.TokenNewline,
		parser.TokenEOF,
	}

	for i, want := range expected {
		tok := lexer.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestLexerSkipsCommentsAndDirectives(t *testing.T) {
	lexer := parser.NewLexer(".org 0\nor %r1, $1 ; comment\n", "test.s")

	// The directive's text is skipped; its newline is still returned.
	tok := lexer.NextToken()
	if tok.Type != parser.TokenNewline {
		t.Fatalf("expected only the directive line's newline, got %v %q", tok.Type, tok.Literal)
	}
	tok = lexer.NextToken()
	if tok.Type != parser.TokenWord || tok.Literal != "or" {
		t.Fatalf("expected directive line and comment to be skipped, got %v %q", tok.Type, tok.Literal)
	}
	for i := 0; i < 5; i++ {
		lexer.NextToken() // % r1 , $ 1
	}
	if tok = lexer.NextToken(); tok.Type != parser.TokenNewline {
		t.Fatalf("expected the trailing comment to be skipped up to the newline, got %v %q", tok.Type, tok.Literal)
	}
}

func TestLexerLabelDefinition(t *testing.T) {
	lexer := parser.NewLexer("loop:\n", "test.s")

	tok := lexer.NextToken()
	if tok.Type != parser.TokenWord || tok.Literal != "loop" {
		t.Fatalf("expected label word, got %v %q", tok.Type, tok.Literal)
	}
	tok = lexer.NextToken()
	if tok.Type != parser.TokenColon {
		t.Fatalf("expected colon after label, got %v", tok.Type)
	}
}

func TestLexerUnexpectedCharacterIsRecorded(t *testing.T) {
	lexer := parser.NewLexer("or %r1, @\n", "test.s")
	for {
		tok := lexer.NextToken()
		if tok.Type == parser.TokenEOF {
			break
		}
	}
	if !lexer.Errors().HasErrors() {
		t.Fatal("expected an error for '@'")
	}
}

func TestSymbolTableDuplicateLabel(t *testing.T) {
	st := parser.NewSymbolTable()
	pos := parser.Position{Filename: "test.s", Line: 1}

	if err := st.Define("loop", 0, pos); err != nil {
		t.Fatalf("unexpected error on first definition: %v", err)
	}
	if err := st.Define("loop", 4, pos); err == nil {
		t.Fatal("expected an error redefining an existing label")
	}
}

func TestSymbolTableGetUndefined(t *testing.T) {
	st := parser.NewSymbolTable()
	if _, err := st.Get("missing"); err == nil {
		t.Fatal("expected an error looking up an undefined label")
	}
}

func TestParseSimpleProgram(t *testing.T) {
	src := "start:\nor %r1, $5\nj start\n"
	p := parser.NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(program.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(program.Instructions))
	}
	if off, err := program.SymbolTable.Get("start"); err != nil || off != 0 {
		t.Fatalf("expected label 'start' bound to offset 0, got %d, %v", off, err)
	}

	second := program.Instructions[1]
	if second.Mnemonic != "j" || second.Second != parser.OperandLabel || second.Label != "start" {
		t.Fatalf("expected second instruction to reference label 'start', got %+v", second)
	}
}

func TestParseUnknownMnemonic(t *testing.T) {
	p := parser.NewParser("frobnicate %r1\n", "test.s")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestParseMemoryOperand(t *testing.T) {
	p := parser.NewParser("lw %r3, $4(%r2)\n", "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	inst := program.Instructions[0]
	if inst.Rd != 3 || inst.MemImm != 4 || inst.MemRs != 2 {
		t.Fatalf("unexpected memory operand decode: %+v", inst)
	}
}

func TestParseRejectsR0AsBranchRegisterOperand(t *testing.T) {
	p := parser.NewParser("jne %r0\n", "test.s")
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected a register-absolute branch to reject %r0")
	}
}

func TestParseAcceptsNonzeroRegisterBranchOperand(t *testing.T) {
	p := parser.NewParser("jal %r1\n", "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	inst := program.Instructions[0]
	if inst.Second != parser.OperandRegister || inst.Rd != 1 {
		t.Fatalf("expected register-absolute branch to %%r1, got %+v", inst)
	}
}

func TestParseRejectsLabelOperandForMovhi(t *testing.T) {
	p := parser.NewParser("movhi %r1, somewhere\n", "test.s")
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected movhi to reject a label operand")
	}
}

func TestParseNopAlias(t *testing.T) {
	p := parser.NewParser("nop\n", "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if program.Instructions[0].Info.Opcode != isa.OpNEG {
		t.Fatalf("expected nop to alias neg, got opcode %v", program.Instructions[0].Info.Opcode)
	}
}
