// Package mvm implements the Meta Virtual Machine: an instruction-
// driven backtracking recognizer/translator combining a pointer-
// advancing scanner, a recognition-success switch, a return/label
// stack with auto-generated labels, and a line-oriented output
// buffer.
package mvm

import "metac/asmload"

// Op identifies one of the MVM's 17 instructions.
type Op int

const (
	OpUndef Op = iota
	OpADR
	OpTST
	OpID
	OpNUM
	OpSR
	OpCLL
	OpR
	OpSET
	OpB
	OpBT
	OpBF
	OpBE
	OpCL
	OpCI
	OpGN1
	OpGN2
	OpLB
	OpOUT
)

var opNames = [...]string{
	OpUndef: "UNDEF", OpADR: "ADR", OpTST: "TST", OpID: "ID", OpNUM: "NUM",
	OpSR: "SR", OpCLL: "CLL", OpR: "R", OpSET: "SET", OpB: "B", OpBT: "BT",
	OpBF: "BF", OpBE: "BE", OpCL: "CL", OpCI: "CI", OpGN1: "GN1", OpGN2: "GN2",
	OpLB: "LB", OpOUT: "OUT",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "UNKNOWN"
}

// Instr is a single MVM instruction. Five ops (ADR, CLL, B, BT, BF)
// carry a resolved instruction-counter target plus the original label
// text for diagnostics; two (TST, CL) carry an inline string literal;
// the rest are nullary.
type Instr struct {
	Op     Op
	Label  string // original label text, for ADR/CLL/B/BT/BF
	Target int    // resolved instruction-counter index
	Str    string // inline literal, for TST/CL
}

func (i *Instr) IsUndefined() bool { return i.Op == OpUndef }

func (i *Instr) AAAOf() (asmload.AAAKind, string) {
	switch i.Op {
	case OpADR, OpCLL, OpB, OpBT, OpBF:
		return asmload.AAAIC, i.Label
	default:
		return asmload.AAANone, ""
	}
}

func (i *Instr) ResolveAddr(addr uint32) {
	panic("mvm: internal error: unknown aaa instruction")
}

func (i *Instr) ResolveIC(ic int) {
	switch i.Op {
	case OpADR, OpCLL, OpB, OpBT, OpBF:
		i.Target = ic
	default:
		panic("mvm: internal error: unknown aaa instruction")
	}
}

// Spec is the asmload.Spec wiring for MVM program text. BLK is not a
// valid MVM pseudo-instruction.
var Spec = asmload.Spec[*Instr]{
	AcceptBLK: false,
	WithLabel: func(ins, label string) *Instr {
		switch ins {
		case "CLL":
			return &Instr{Op: OpCLL, Label: label}
		case "B":
			return &Instr{Op: OpB, Label: label}
		case "BT":
			return &Instr{Op: OpBT, Label: label}
		case "BF":
			return &Instr{Op: OpBF, Label: label}
		case "ADR":
			return &Instr{Op: OpADR, Label: label}
		default:
			return &Instr{Op: OpUndef}
		}
	},
	WithNum: func(ins string, n float64) *Instr {
		return &Instr{Op: OpUndef}
	},
	WithString: func(ins, s string) *Instr {
		switch ins {
		case "TST":
			return &Instr{Op: OpTST, Str: s}
		case "CL":
			return &Instr{Op: OpCL, Str: s}
		default:
			return &Instr{Op: OpUndef}
		}
	},
	WithNoArg: func(ins string) *Instr {
		switch ins {
		case "ID":
			return &Instr{Op: OpID}
		case "NUM":
			return &Instr{Op: OpNUM}
		case "SR":
			return &Instr{Op: OpSR}
		case "R":
			return &Instr{Op: OpR}
		case "SET":
			return &Instr{Op: OpSET}
		case "BE":
			return &Instr{Op: OpBE}
		case "CI":
			return &Instr{Op: OpCI}
		case "GN1":
			return &Instr{Op: OpGN1}
		case "GN2":
			return &Instr{Op: OpGN2}
		case "LB":
			return &Instr{Op: OpLB}
		case "OUT":
			return &Instr{Op: OpOUT}
		default:
			return &Instr{Op: OpUndef}
		}
	},
}

// Program is an assembled MVM program.
type Program = asmload.Program[*Instr]

// Load assembles the MVM program text at path.
func Load(path string) (*Program, error) {
	return asmload.Load(Spec, path)
}

// Parse assembles MVM program text held in memory.
func Parse(pgm string) (*Program, error) {
	return asmload.Parse(Spec, pgm)
}
