package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tangle-project/tangle/isa"
)

// Parser parses Tangle assembly, per spec §4.1-§4.2: a line-oriented
// lexer feeding per-mnemonic operand grammars. Pass 1 builds the full
// symbol table and the raw (unencoded) instruction list; resolving
// label operands happens later, in the encoder/relocator.
type Parser struct {
	lexer        *Lexer
	tokens       []Token
	pos          int
	currentToken Token
	peekToken    Token
	errors       *ErrorList
	symbolTable  *SymbolTable
	pc           int
}

// NewParser creates a parser over input, reporting diagnostics against filename.
func NewParser(input, filename string) *Parser {
	lexer := NewLexer(input, filename)
	p := &Parser{
		lexer:       lexer,
		errors:      &ErrorList{},
		symbolTable: NewSymbolTable(),
	}
	p.tokens = lexer.TokenizeAll()
	for _, err := range lexer.Errors().Errors {
		p.errors.Add(err)
	}
	p.nextToken()
	p.nextToken()
	return p
}

// TokenizeAll drains the lexer into a token slice, always ending in TokenEOF.
func (l *Lexer) TokenizeAll() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return tokens
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = Token{Type: TokenEOF, Pos: p.currentToken.Pos}
	}
}

func (p *Parser) skipNewlines() {
	for p.currentToken.Type == TokenNewline {
		p.nextToken()
	}
}

// skipRestOfLine discards tokens until (and including) the next
// newline or EOF, used to resynchronize after a line-level error.
func (p *Parser) skipRestOfLine() {
	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		p.nextToken()
	}
}

// Errors returns the accumulated diagnostics.
func (p *Parser) Errors() *ErrorList {
	return p.errors
}

// Parse runs pass 1: collects labels and parses every instruction line.
// It returns the program and a non-nil error (an *ErrorList) if any
// diagnostic fired; per spec §7, no output should be produced in that case.
func (p *Parser) Parse() (*Program, error) {
	program := &Program{SymbolTable: p.symbolTable}

	for p.currentToken.Type != TokenEOF {
		p.skipNewlines()
		if p.currentToken.Type == TokenEOF {
			break
		}

		// A label definition is a WORD immediately followed by ':'.
		if p.currentToken.Type == TokenWord && p.peekToken.Type == TokenColon {
			name := p.currentToken.Literal
			pos := p.currentToken.Pos
			p.nextToken() // consume word
			p.nextToken() // consume ':'
			if err := p.symbolTable.Define(name, p.pc, pos); err != nil {
				p.errors.Add(NewError(pos, ErrDuplicateLabel, err.Error()))
			}
			continue
		}

		if p.currentToken.Type == TokenEOF {
			break
		}
		if p.currentToken.Type == TokenNewline {
			continue
		}

		inst := p.parseInstruction()
		if inst != nil {
			program.Instructions = append(program.Instructions, inst)
			p.pc++
		}

		// Only whitespace followed by comment/newline/EOF may follow an
		// instruction's operands (spec §4.2); anything else resyncs on error.
		if p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
			p.skipRestOfLine()
		}
	}

	if p.errors.HasErrors() {
		return program, p.errors
	}
	return program, nil
}

// parseInstruction parses one mnemonic + its operands, per the grammar
// selector in isa.Mnemonics. Returns nil (with a diagnostic recorded)
// on failure; the caller resynchronizes to the next line.
func (p *Parser) parseInstruction() *Instruction {
	tok := p.currentToken
	mnemonic := strings.ToLower(tok.Literal)
	info, ok := isa.Mnemonics[mnemonic]
	if !ok {
		p.errors.Add(NewError(tok.Pos, ErrUnknownMnemonic, fmt.Sprintf("unknown mnemonic: %q", tok.Literal)))
		p.nextToken()
		return nil
	}
	p.nextToken()

	inst := &Instruction{
		Pos:      tok.Pos,
		Mnemonic: mnemonic,
		Info:     info,
		RawLine:  mnemonic,
		PC:       p.pc,
	}

	var err error
	switch info.Grammar {
	case isa.GrammarNone:
		err = p.parseNoOperand()
	case isa.GrammarOne:
		err = p.parseOneOperand(inst)
	case isa.GrammarTwo:
		err = p.parseTwoOperand(inst)
	case isa.GrammarThree:
		err = p.parseThreeOperand(inst)
	}

	if err != nil {
		p.errors.Add(NewError(tok.Pos, ErrOperand, err.Error()))
		return nil
	}
	return inst
}

func (p *Parser) parseNoOperand() error {
	if p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		return fmt.Errorf("invalid operand for 'nop'")
	}
	return nil
}

// parseOneOperand handles the single-operand AMI forms (not/neg) and
// every branch mnemonic: a register, an immediate (branches only), or
// a bare label (branches only).
func (p *Parser) parseOneOperand(inst *Instruction) error {
	if p.currentToken.Type == TokenPercent {
		reg, err := p.parseRegister()
		if err != nil {
			return err
		}
		// spec §4.2: r0 is reserved as the discriminator for the
		// immediate form of a branch operand, so a register-absolute
		// branch must never name it (it would be bit-identical to a
		// zero-displacement immediate branch once encoded).
		if inst.Info.Class == isa.ClassBranch && reg == 0 {
			return fmt.Errorf("invalid operand for '%s': %%r0 is reserved, branch register operand must be %%r1-%%r7", inst.Mnemonic)
		}
		inst.Rd = reg
		inst.Second = OperandRegister
		return p.finishLine(inst.Mnemonic)
	}

	if inst.Info.Class != isa.ClassBranch {
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}

	if p.currentToken.Type == TokenDollar {
		p.nextToken()
		n, err := p.parseNumber()
		if err != nil {
			return err
		}
		inst.Second = OperandImmediate
		inst.Imm = n
		return p.finishLine(inst.Mnemonic)
	}

	if p.currentToken.Type == TokenWord {
		inst.Second = OperandLabel
		inst.Label = p.currentToken.Literal
		p.nextToken()
		return p.finishLine(inst.Mnemonic)
	}

	return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
}

// parseTwoOperand handles "rd, (rs | $imm | label)" for binary AMI,
// MOV, MOVHI, and MOVLO (label rejected for the latter two).
func (p *Parser) parseTwoOperand(inst *Instruction) error {
	reg, err := p.parseRegister()
	if err != nil {
		return err
	}
	inst.Rd = reg

	if p.currentToken.Type != TokenComma {
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}
	p.nextToken()

	switch p.currentToken.Type {
	case TokenPercent:
		rs, err := p.parseRegister()
		if err != nil {
			return err
		}
		inst.Second = OperandRegister
		inst.Rs = rs
	case TokenDollar:
		p.nextToken()
		n, err := p.parseNumber()
		if err != nil {
			return err
		}
		inst.Second = OperandImmediate
		inst.Imm = n
	case TokenWord:
		if inst.Mnemonic == "movhi" || inst.Mnemonic == "movlo" {
			return fmt.Errorf("invalid operand for '%s': labels are not allowed", inst.Mnemonic)
		}
		inst.Second = OperandLabel
		inst.Label = p.currentToken.Literal
		p.nextToken()
	default:
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}

	return p.finishLine(inst.Mnemonic)
}

// parseThreeOperand handles "rd, $imm(rs)" for lw/sw.
func (p *Parser) parseThreeOperand(inst *Instruction) error {
	reg, err := p.parseRegister()
	if err != nil {
		return err
	}
	inst.Rd = reg

	if p.currentToken.Type != TokenComma {
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}
	p.nextToken()

	if p.currentToken.Type != TokenDollar {
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}
	p.nextToken()

	n, err := p.parseNumber()
	if err != nil {
		return err
	}
	inst.MemImm = n

	if p.currentToken.Type != TokenLParen {
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}
	p.nextToken()

	rs, err := p.parseRegister()
	if err != nil {
		return err
	}
	inst.MemRs = rs

	if p.currentToken.Type != TokenRParen {
		return fmt.Errorf("invalid operand for '%s'", inst.Mnemonic)
	}
	p.nextToken()

	return p.finishLine(inst.Mnemonic)
}

// parseRegister consumes "%rN", N in 0..7.
func (p *Parser) parseRegister() (int, error) {
	if p.currentToken.Type != TokenPercent {
		return 0, fmt.Errorf("expected register")
	}
	p.nextToken()
	if p.currentToken.Type != TokenWord {
		return 0, fmt.Errorf("expected register")
	}
	lit := strings.ToLower(p.currentToken.Literal)
	if len(lit) != 2 || lit[0] != 'r' || lit[1] < '0' || lit[1] > '7' {
		return 0, fmt.Errorf("invalid register: %%%s", p.currentToken.Literal)
	}
	n := int(lit[1] - '0')
	p.nextToken()
	return n, nil
}

// parseNumber consumes a number-shaped WORD token: leading '0x' hex,
// leading '0' octal, else decimal; a leading '-' is allowed (spec §4.1).
func (p *Parser) parseNumber() (int, error) {
	if p.currentToken.Type != TokenWord {
		return 0, fmt.Errorf("invalid number")
	}
	lit := p.currentToken.Literal
	p.nextToken()

	neg := false
	s := lit
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var n int64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseInt(s[2:], 16, 64)
	case len(s) > 1 && s[0] == '0':
		n, err = strconv.ParseInt(s, 8, 64)
	default:
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number: %q", lit)
	}
	if neg {
		n = -n
	}
	const maxAbs = 1 << 31
	if n >= maxAbs || n < -maxAbs {
		return 0, fmt.Errorf("invalid number: %q (out of range)", lit)
	}
	return int(n), nil
}

// finishLine accepts the rest of the line: only a comment/newline/EOF
// may follow the operands (spec §4.2).
func (p *Parser) finishLine(mnemonic string) error {
	if p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		return fmt.Errorf("invalid operand for '%s'", mnemonic)
	}
	return nil
}
