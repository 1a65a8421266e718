package asmload

import (
	"os"
	"strings"

	"metac/lexer"
)

// Program is the result of assembling one program source: a flat
// instruction vector, a label-to-address table, and an address-to-
// instruction-counter table (used to resolve IC-kind operands and by
// callers that need to print address/ic correspondences).
type Program[I Instruction] struct {
	Instrs []I
	Labels map[string]uint32
	IC     map[uint32]int

	addr uint32
}

func newProgram[I Instruction]() *Program[I] {
	return &Program[I]{
		Labels: make(map[string]uint32),
		IC:     make(map[uint32]int),
	}
}

// Load reads path and assembles it per spec.
func Load[I Instruction](spec Spec[I], path string) (*Program[I], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(spec, string(data))
}

// Parse assembles pgm, a complete program source, into a Program.
func Parse[I Instruction](spec Spec[I], pgm string) (*Program[I], error) {
	p := newProgram[I]()
	if err := p.parse(spec, pgm); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program[I]) parse(spec Spec[I], pgm string) error {
	lineNo := 0
	for _, raw := range strings.Split(pgm, "\n") {
		lineNo++
		line := strings.TrimRight(raw, " \t\r\n\v\f")
		if line == "" {
			continue
		}

		lx := lexer.New(line, []string{"#"})
		tok, err := lx.Next()
		if err != nil {
			return errf(lineNo, line, "%s", err.Error())
		}

		switch tok.Kind {
		case lexer.KindIdent:
			p.addLabel(tok.Literal)
		case lexer.KindWS:
			done, err := p.addInstr(spec, lx, lineNo, line)
			if err != nil {
				return err
			}
			if done {
				return p.resolve()
			}
		case lexer.KindSymbol:
			if tok.Literal != "#" {
				return errf(lineNo, line, "unexpected %s", tok.String())
			}
		default:
			return errf(lineNo, line, "unexpected %s", tok.String())
		}
	}
	return p.resolve()
}

func (p *Program[I]) addLabel(label string) {
	p.Labels[label] = p.addr
	p.IC[p.addr] = len(p.Instrs)
}

// addInstr parses one instruction line, having already consumed the
// leading identifier-or-whitespace token. It returns done=true when
// the line is an END directive or end-of-input (caller stops scanning
// further lines).
func (p *Program[I]) addInstr(spec Spec[I], lx *lexer.Lexer, lineNo int, line string) (bool, error) {
	tok, err := lx.Next()
	if err != nil {
		return false, errf(lineNo, line, "%s", err.Error())
	}
	var ins string
	switch tok.Kind {
	case lexer.KindEnd:
		return true, nil
	case lexer.KindSymbol:
		if tok.Literal == "#" {
			return false, nil
		}
		return false, errf(lineNo, line, "unexpected %s", tok.String())
	case lexer.KindIdent:
		ins = tok.Literal
	default:
		return false, errf(lineNo, line, "unexpected %s", tok.String())
	}

	tok, err = lx.Next()
	if err != nil {
		return false, errf(lineNo, line, "%s", err.Error())
	}
	if tok.Kind == lexer.KindWS {
		tok, err = lx.Next()
		if err != nil {
			return false, errf(lineNo, line, "%s", err.Error())
		}
	}

	inc := uint32(2)
	var instr I
	switch tok.Kind {
	case lexer.KindIdent:
		instr = spec.WithLabel(ins, tok.Literal)
	case lexer.KindNumber:
		if ins == "BLK" {
			if !spec.AcceptBLK {
				return false, errf(lineNo, line, "BLK use is invalid")
			}
			n := tok.Num
			if n != float64(uint32(n)) || n < 0 {
				return false, errf(lineNo, line, "invalid BLK: %s", line)
			}
			p.addr += uint32(n)
			return false, nil
		}
		instr = spec.WithNum(ins, tok.Num)
	case lexer.KindString:
		instr = spec.WithString(ins, tok.Literal)
	case lexer.KindSymbol:
		if tok.Literal != "#" {
			return false, errf(lineNo, line, "invalid line %s", line)
		}
		inc = 1
		if ins == "END" {
			return true, nil
		}
		instr = spec.WithNoArg(ins)
	case lexer.KindEnd:
		inc = 1
		if ins == "END" {
			return true, nil
		}
		instr = spec.WithNoArg(ins)
	default:
		return false, errf(lineNo, line, "unexpected %s", tok.String())
	}

	if instr.IsUndefined() {
		return false, errf(lineNo, line, "invalid instruction %s", line)
	}

	p.Instrs = append(p.Instrs, instr)
	p.addr += inc
	return false, nil
}

func (p *Program[I]) resolve() error {
	n := len(p.Instrs)
	for i := range p.Instrs {
		instr := p.Instrs[i]
		kind, label := instr.AAAOf()
		switch kind {
		case AAANone:
			continue
		case AAAMem:
			addr, ok := p.Labels[label]
			if !ok {
				return &Error{Message: "unknown label " + label}
			}
			instr.ResolveAddr(addr)
		case AAAIC:
			addr, ok := p.Labels[label]
			if !ok {
				return &Error{Message: "unknown label " + label}
			}
			ic, ok := p.IC[addr]
			if !ok {
				return &Error{Message: "internal error: unmatched addr for ic"}
			}
			if ic >= n {
				return &Error{Message: "instruction counter for " + label + " without instruction"}
			}
			instr.ResolveIC(ic)
		}
	}
	return nil
}
