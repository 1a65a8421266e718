package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

type state int

const (
	stateStart state = iota
	stateIdent
	stateNum
	stateWS
	stateSymbol
	stateStr
)

// Lexer tokenizes ASCII text against a caller-supplied symbol table.
// It never backtracks across a returned token.
type Lexer struct {
	input string
	pos   int
	syms  []string
}

// New creates a lexer over input, recognizing multi-character symbols
// by longest match against syms.
func New(input string, syms []string) *Lexer {
	return &Lexer{input: input, syms: syms}
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos], true
}

func (l *Lexer) isSymStart(s string) bool {
	for _, sym := range l.syms {
		if strings.HasPrefix(sym, s) {
			return true
		}
	}
	return false
}

func isASCIIAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }
func isASCIIAlnum(b byte) bool { return isASCIIAlpha(b) || isASCIIDigit(b) }
func isASCIIWS(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

// Next returns the next token. Returned exactly once at end-of-input;
// subsequent calls are unspecified.
func (l *Lexer) Next() (Token, error) {
	var tok strings.Builder
	state := stateStart

loop:
	for {
		ch, ok := l.peek()
		if !ok {
			break loop
		}
		switch state {
		case stateStart:
			switch {
			case isASCIIWS(ch):
				state = stateWS
				l.pos++
			case isASCIIAlpha(ch):
				state = stateIdent
				tok.WriteByte(ch)
				l.pos++
			case isASCIIDigit(ch):
				state = stateNum
				tok.WriteByte(ch)
				l.pos++
			case ch == '\'':
				state = stateStr
				l.pos++
			case ch == '.':
				tok.WriteByte(ch)
				l.pos++
				state = stateSymbol
				if next, ok2 := l.peek(); ok2 && isASCIIDigit(next) {
					state = stateNum
					continue loop
				}
				if !l.isSymStart(tok.String()) {
					return Token{}, fmt.Errorf("not a symbol %s", tok.String())
				}
			default:
				state = stateSymbol
				tok.WriteByte(ch)
				if !l.isSymStart(tok.String()) {
					return Token{}, fmt.Errorf("not a symbol %s", tok.String())
				}
				l.pos++
			}
		case stateIdent:
			if isASCIIAlnum(ch) {
				tok.WriteByte(ch)
				l.pos++
			} else {
				break loop
			}
		case stateNum:
			if isASCIIDigit(ch) || ch == '.' {
				tok.WriteByte(ch)
				l.pos++
			} else {
				break loop
			}
		case stateWS:
			if isASCIIWS(ch) {
				l.pos++
			} else {
				break loop
			}
		case stateSymbol:
			cand := tok.String() + string(ch)
			if !l.isSymStart(cand) {
				break loop
			}
			tok.WriteByte(ch)
			l.pos++
		case stateStr:
			l.pos++
			if ch == '\'' {
				break loop
			}
			tok.WriteByte(ch)
		}
	}

	switch state {
	case stateNum:
		n, err := strconv.ParseFloat(tok.String(), 64)
		if err != nil {
			return Token{}, fmt.Errorf("invalid float literal")
		}
		return Token{Kind: KindNumber, Literal: tok.String(), Num: n}, nil
	case stateStart:
		return Token{Kind: KindEnd}, nil
	case stateWS:
		return Token{Kind: KindWS}, nil
	case stateIdent:
		return Token{Kind: KindIdent, Literal: tok.String()}, nil
	case stateSymbol:
		return Token{Kind: KindSymbol, Literal: tok.String()}, nil
	case stateStr:
		return Token{Kind: KindString, Literal: tok.String()}, nil
	default:
		panic("lexer: unreachable state")
	}
}
