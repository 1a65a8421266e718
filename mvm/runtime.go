package mvm

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnexpected is returned by Generated when BE is reached with the
// recognition switch false: the normal failure mode of an ill-formed
// source program, not an internal error.
var ErrUnexpected = errors.New("unexpected")

type stackKind int

const (
	stkLabel stackKind = iota
	stkBack
)

type stackVal struct {
	kind   stackKind
	label  string // valid when kind == stkLabel
	ric    int    // valid when kind == stkBack
	blanks bool   // valid when kind == stkBack
}

// M is one MVM runtime instance: an input text, a scan position, the
// recognition switch, the last matched lexeme, the return/label
// stack, and the accumulated output.
type M struct {
	input string
	pos   int
	sw    bool
	last  string
	aCnt  int
	bCnt  int
	out   strings.Builder
	stk   []stackVal

	// MaxSteps bounds the number of fetch-dispatch cycles Execute
	// will run before giving up with ErrStepBudgetExceeded. 0 (the
	// default) disables the budget: the spec requires that a
	// malformed program be allowed to loop forever.
	MaxSteps uint64

	// Trace, if non-nil, receives one line per fetch-dispatch cycle
	// (when driven by Execute) and one line per scanning-primitive
	// call (Tst/Id/Num/Sr), so a hand-driven recognizer such as
	// metabstrp's also produces a meaningful trace.
	Trace    io.Writer
	traceSeq uint64
}

func (m *M) traceScan(op string, matched bool) {
	if m.Trace == nil {
		return
	}
	m.traceSeq++
	fmt.Fprintf(m.Trace, "[%06d] pos=%04d scan=%s matched=%v\n", m.traceSeq, m.pos, op, matched)
}

// New creates an MVM runtime over input, with the output buffer
// pre-initialized to eight spaces of indentation.
func New(input string) *M {
	m := &M{input: input}
	m.out.WriteString(strings.Repeat(" ", 8))
	return m
}

func isASCIIWS(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

func isASCIIAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func (m *M) eatWS() {
	for m.pos < len(m.input) && isASCIIWS(m.input[m.pos]) {
		m.pos++
	}
}

// Tst matches the literal string s at the current position.
func (m *M) Tst(s string) bool {
	m.eatWS()
	rest := m.input[m.pos:]
	if strings.HasPrefix(rest, s) {
		start := m.pos
		m.pos += len(s)
		m.last = m.input[start:m.pos]
		m.sw = true
	} else {
		m.sw = false
	}
	m.traceScan("TST "+s, m.sw)
	return m.sw
}

// Id matches an identifier: [A-Za-z][A-Za-z0-9]*.
func (m *M) Id() bool {
	m.eatWS()
	m.sw = false
	if m.pos >= len(m.input) || !isASCIIAlpha(m.input[m.pos]) {
		m.traceScan("ID", false)
		return false
	}
	start := m.pos
	for m.pos < len(m.input) && (isASCIIAlpha(m.input[m.pos]) || isASCIIDigit(m.input[m.pos])) {
		m.pos++
	}
	m.last = m.input[start:m.pos]
	m.sw = true
	m.traceScan("ID", true)
	return true
}

// Num matches a decimal number, rejecting a trailing dot or "..".
func (m *M) Num() bool {
	m.eatWS()
	m.sw = false
	if m.pos >= len(m.input) || !isASCIIDigit(m.input[m.pos]) {
		m.traceScan("NUM", false)
		return false
	}
	start := m.pos
	end := m.pos
	for end < len(m.input) {
		c := m.input[end]
		if c != '.' && !isASCIIDigit(c) {
			break
		}
		end++
	}
	num := m.input[start:end]
	if strings.HasSuffix(num, ".") || strings.Contains(num, "..") {
		m.traceScan("NUM", false)
		return false
	}
	m.pos = end
	m.last = num
	m.sw = true
	m.traceScan("NUM", true)
	return true
}

// Sr matches a '...' quoted string; the quotes are part of Last.
func (m *M) Sr() bool {
	m.eatWS()
	m.sw = false
	if m.pos >= len(m.input) || m.input[m.pos] != '\'' {
		m.traceScan("SR", false)
		return false
	}
	start := m.pos
	end := m.pos
	for {
		end++
		if end >= len(m.input) {
			break
		}
		if m.input[end] == '\'' {
			end++
			break
		}
	}
	sr := m.input[start:end]
	if !strings.HasSuffix(sr, "'") {
		m.traceScan("SR", false)
		return false
	}
	m.last = sr
	m.pos = end
	m.sw = true
	m.traceScan("SR", true)
	return true
}

// Cll pushes a return frame (return-ic = ric) then two empty label
// slots, first collapsing the top two slots of the stack if both are
// already-empty label slots (the "blanks" optimization).
func (m *M) Cll(ric int) {
	n := len(m.stk)
	blanks := false
	if n >= 2 && m.stk[n-2].kind == stkLabel && m.stk[n-2].label == "" &&
		m.stk[n-1].kind == stkLabel && m.stk[n-1].label == "" {
		blanks = true
		m.stk = m.stk[:n-2]
	}
	m.stk = append(m.stk, stackVal{kind: stkBack, ric: ric, blanks: blanks})
	m.stk = append(m.stk, stackVal{kind: stkLabel}, stackVal{kind: stkLabel})
}

// R pops the top three frames, restoring the two collapsed label
// slots if the popped return frame recorded a collapse, and returns
// its return-ic.
func (m *M) R() int {
	n := len(m.stk)
	if n >= 3 && m.stk[n-3].kind == stkBack {
		back := m.stk[n-3]
		m.stk = m.stk[:n-3]
		if back.blanks {
			m.stk = append(m.stk, stackVal{kind: stkLabel}, stackVal{kind: stkLabel})
		}
		return back.ric
	}
	panic("mvm: machine state stack unmatched return")
}

// Set forces the recognition switch true.
func (m *M) Set() { m.sw = true }

// Be raises a recognition failure if the switch is false.
func (m *M) Be() error {
	if !m.sw {
		return ErrUnexpected
	}
	return nil
}

// Cl appends s then a single space to the output buffer.
func (m *M) Cl(s string) {
	m.out.WriteString(s)
	m.out.WriteByte(' ')
}

// Ci appends the last matched lexeme to the output buffer, if the
// switch is true.
func (m *M) Ci() {
	if m.sw {
		m.out.WriteString(m.last)
	}
}

// Gn1 consults the A-slot (second-from-top frame), allocating a fresh
// A%03d label on first use within this call, then emits it.
func (m *M) Gn1() {
	n := len(m.stk)
	if n >= 2 && m.stk[n-2].kind == stkLabel {
		s := &m.stk[n-2]
		if s.label == "" {
			m.aCnt++
			s.label = fmt.Sprintf("A%03d", m.aCnt)
		}
		m.out.WriteString(s.label)
		m.out.WriteByte(' ')
		return
	}
	panic("mvm: malformed machine state stack")
}

// Gn2 is Gn1's counterpart for the B-slot (top of frame) using B%03d.
func (m *M) Gn2() {
	n := len(m.stk)
	if n >= 1 && m.stk[n-1].kind == stkLabel {
		s := &m.stk[n-1]
		if s.label == "" {
			m.bCnt++
			s.label = fmt.Sprintf("B%03d", m.bCnt)
		}
		m.out.WriteString(s.label)
		m.out.WriteByte(' ')
		return
	}
	panic("mvm: malformed machine state stack")
}

// Out appends a newline then eight spaces, indenting the next
// instruction line.
func (m *M) Out() {
	m.out.WriteByte('\n')
	m.out.WriteString(strings.Repeat(" ", 8))
}

// Lb truncates the output buffer back to immediately after the most
// recent newline (or to empty if none), so the next emission starts
// at column 0.
func (m *M) Lb() {
	s := m.out.String()
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		m.out.Reset()
		m.out.WriteString(s[:i+1])
	} else {
		m.out.Reset()
	}
}

// Left returns the remaining input, untrimmed.
func (m *M) Left() string {
	return m.input[m.pos:]
}

// Generated finalizes a run: the switch must be true and all
// non-whitespace input must have been consumed.
func (m *M) Generated() (string, error) {
	if err := m.Be(); err != nil {
		return "", err
	}
	if strings.TrimLeft(m.Left(), " \t\n\r\f\v") != "" {
		return "", ErrUnexpected
	}
	return m.out.String(), nil
}

// ErrStepBudgetExceeded is returned by Execute when MaxSteps is
// nonzero and the run did not halt within that many fetch-dispatch
// cycles.
var ErrStepBudgetExceeded = errors.New("mvm: max steps exceeded")

// Execute runs pgm to completion: an implicit top-level CLL(0), then
// dispatch to the prolog ADR's target (instruction 0 must be ADR).
// Returns nil whether the program halted via R with a return-ic of 0
// or via a failed BE; the caller distinguishes success from
// recognition failure via Generated. Returns ErrStepBudgetExceeded if
// MaxSteps is nonzero and exceeded.
func (m *M) Execute(pgm *Program) error {
	if len(pgm.Instrs) == 0 || pgm.Instrs[0].Op != OpADR {
		panic("mvm: invalid program prolog")
	}
	m.Cll(0)
	ic := pgm.Instrs[0].Target

	var steps uint64
	for {
		steps++
		if m.MaxSteps != 0 && steps > m.MaxSteps {
			return ErrStepBudgetExceeded
		}
		instr := pgm.Instrs[ic]
		if m.Trace != nil {
			fmt.Fprintf(m.Trace, "[%06d] ic=%04d %s\n", steps, ic, instr.Op)
		}
		switch instr.Op {
		case OpUndef:
			panic("mvm: Undef unexpected in program")
		case OpADR:
			panic("mvm: ADR unexpected after prolog")
		case OpTST:
			m.Tst(instr.Str)
		case OpID:
			m.Id()
		case OpNUM:
			m.Num()
		case OpSR:
			m.Sr()
		case OpCLL:
			m.Cll(ic + 1)
			ic = instr.Target
			continue
		case OpR:
			ic = m.R()
			if ic == 0 {
				return nil
			}
			continue
		case OpSET:
			m.Set()
		case OpB:
			ic = instr.Target
			continue
		case OpBT:
			if m.sw {
				ic = instr.Target
				continue
			}
		case OpBF:
			if !m.sw {
				ic = instr.Target
				continue
			}
		case OpBE:
			if m.Be() != nil {
				return nil
			}
		case OpCL:
			m.Cl(instr.Str)
		case OpCI:
			m.Ci()
		case OpGN1:
			m.Gn1()
		case OpGN2:
			m.Gn2()
		case OpLB:
			m.Lb()
		case OpOUT:
			m.Out()
		}
		ic++
	}
}
