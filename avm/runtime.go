package avm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// ErrStepBudgetExceeded is returned by Execute when MaxSteps is
// nonzero and the run did not halt within that many fetch-dispatch
// cycles.
var ErrStepBudgetExceeded = errors.New("avm: max steps exceeded")

const (
	printAreaSize = 100
	epsilon       = 0.000001
)

// M is one AVM runtime instance: an f64 stack, sparse memory, and a
// lazily-initialized 100-column print area. PNT writes to Out, which
// defaults to os.Stdout.
type M struct {
	mem       map[uint32]float64
	stack     []float64
	printArea []byte // nil until first EDT; always printAreaSize long once allocated
	Out       io.Writer

	// MaxSteps bounds the number of fetch-dispatch cycles Execute will
	// run before giving up with ErrStepBudgetExceeded. 0 (the default)
	// disables the budget.
	MaxSteps uint64

	// Trace, if non-nil, receives one line per fetch-dispatch cycle:
	// sequence number, instruction counter, and opcode.
	Trace io.Writer
}

// New creates an AVM runtime with an empty stack and memory.
func New() *M {
	return &M{mem: make(map[uint32]float64), Out: os.Stdout}
}

func (m *M) push(v float64) { m.stack = append(m.stack, v) }

func (m *M) pop() float64 {
	n := len(m.stack)
	if n == 0 {
		panic("avm: machine stack underflow")
	}
	v := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return v
}

func (m *M) ld(loc uint32) {
	m.push(m.mem[loc])
}

func (m *M) st(loc uint32) {
	m.mem[loc] = m.pop()
}

func (m *M) add() {
	a := m.pop()
	b := m.pop()
	m.push(a + b)
}

func (m *M) sub() {
	a := m.pop()
	b := m.pop()
	m.push(a - b)
}

func (m *M) mlt() {
	a := m.pop()
	b := m.pop()
	m.push(a * b)
}

func (m *M) equ() {
	a := m.pop()
	b := m.pop()
	if math.Abs(a-b) < epsilon {
		m.push(1.0)
	} else {
		m.push(0.0)
	}
}

func (m *M) edt(s string) {
	n := math.Round(m.pop())
	if n < 0 {
		return
	}
	start := int(n)
	sz := len(s)
	if start+sz > printAreaSize {
		return
	}
	if m.printArea == nil {
		m.printArea = []byte(strings.Repeat(" ", printAreaSize))
	}
	copy(m.printArea[start:start+sz], s)
}

func (m *M) pnt() {
	var line string
	if m.printArea == nil {
		line = ""
	} else {
		line = strings.TrimRight(string(m.printArea), " ")
	}
	fmt.Fprintln(m.Out, line)
	m.printArea = nil
}

// Execute runs pgm from instruction 0 until HLT. Returns
// ErrStepBudgetExceeded if MaxSteps is nonzero and exceeded.
func (m *M) Execute(pgm *Program) error {
	ic := 0
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
			panic("avm: Undef unexpected in program")
		case OpLDL:
			m.push(instr.Num)
		case OpLD:
			m.ld(instr.Addr)
		case OpST:
			m.st(instr.Addr)
		case OpB:
			ic = instr.Target
			continue
		case OpBFP:
			if m.pop() == 0.0 {
				ic = instr.Target
				continue
			}
		case OpBTP:
			if m.pop() != 0.0 {
				ic = instr.Target
				continue
			}
		case OpADD:
			m.add()
		case OpSUB:
			m.sub()
		case OpMLT:
			m.mlt()
		case OpEQU:
			m.equ()
		case OpHLT:
			return nil
		case OpEDT:
			m.edt(instr.Str)
		case OpPNT:
			m.pnt()
		}
		ic++
	}
}
