// Package avm implements the Arithmetic Virtual Machine: a stack
// machine over float64 with sparse memory, used as the target for
// MVM-translated programs.
package avm

import "metac/asmload"

// Op identifies one of the AVM's 13 instructions.
type Op int

const (
	OpUndef Op = iota
	OpLDL
	OpLD
	OpST
	OpADD
	OpSUB
	OpMLT
	OpEQU
	OpB
	OpBFP
	OpBTP
	OpEDT
	OpPNT
	OpHLT
)

var opNames = [...]string{
	OpUndef: "UNDEF", OpLDL: "LDL", OpLD: "LD", OpST: "ST", OpADD: "ADD",
	OpSUB: "SUB", OpMLT: "MLT", OpEQU: "EQU", OpB: "B", OpBFP: "BFP",
	OpBTP: "BTP", OpEDT: "EDT", OpPNT: "PNT", OpHLT: "HLT",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "UNKNOWN"
}

// Instr is a single AVM instruction. LD/ST carry a resolved memory
// address; B/BFP/BTP carry a resolved instruction-counter target plus
// the original label for diagnostics; LDL carries a float constant;
// EDT carries an inline string; the rest are nullary.
type Instr struct {
	Op    Op
	Label string // original label text, for LD/ST/B/BFP/BTP
	Addr  uint32 // resolved memory address, for LD/ST
	Target int   // resolved instruction-counter index, for B/BFP/BTP
	Num   float64
	Str   string
}

func (i *Instr) IsUndefined() bool { return i.Op == OpUndef }

func (i *Instr) AAAOf() (asmload.AAAKind, string) {
	switch i.Op {
	case OpST, OpLD:
		return asmload.AAAMem, i.Label
	case OpB, OpBFP, OpBTP:
		return asmload.AAAIC, i.Label
	default:
		return asmload.AAANone, ""
	}
}

func (i *Instr) ResolveAddr(addr uint32) {
	switch i.Op {
	case OpST, OpLD:
		i.Addr = addr
	default:
		panic("avm: internal error: unknown aaa instruction")
	}
}

func (i *Instr) ResolveIC(ic int) {
	switch i.Op {
	case OpB, OpBFP, OpBTP:
		i.Target = ic
	default:
		panic("avm: internal error: unknown aaa instruction")
	}
}

// Spec is the asmload.Spec wiring for AVM program text. BLK is a
// valid AVM pseudo-instruction.
var Spec = asmload.Spec[*Instr]{
	AcceptBLK: true,
	WithLabel: func(ins, label string) *Instr {
		switch ins {
		case "B":
			return &Instr{Op: OpB, Label: label}
		case "ST":
			return &Instr{Op: OpST, Label: label}
		case "LD":
			return &Instr{Op: OpLD, Label: label}
		case "BTP":
			return &Instr{Op: OpBTP, Label: label}
		case "BFP":
			return &Instr{Op: OpBFP, Label: label}
		default:
			return &Instr{Op: OpUndef}
		}
	},
	WithNum: func(ins string, n float64) *Instr {
		if ins == "LDL" {
			return &Instr{Op: OpLDL, Num: n}
		}
		return &Instr{Op: OpUndef}
	},
	WithString: func(ins, s string) *Instr {
		if ins == "EDT" {
			return &Instr{Op: OpEDT, Str: s}
		}
		return &Instr{Op: OpUndef}
	},
	WithNoArg: func(ins string) *Instr {
		switch ins {
		case "EQU":
			return &Instr{Op: OpEQU}
		case "ADD":
			return &Instr{Op: OpADD}
		case "SUB":
			return &Instr{Op: OpSUB}
		case "MLT":
			return &Instr{Op: OpMLT}
		case "PNT":
			return &Instr{Op: OpPNT}
		case "HLT":
			return &Instr{Op: OpHLT}
		default:
			return &Instr{Op: OpUndef}
		}
	},
}

// Program is an assembled AVM program.
type Program = asmload.Program[*Instr]

// Load assembles the AVM program text at path.
func Load(path string) (*Program, error) {
	return asmload.Load(Spec, path)
}

// Parse assembles AVM program text held in memory.
func Parse(pgm string) (*Program, error) {
	return asmload.Parse(Spec, pgm)
}
