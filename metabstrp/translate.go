// Package metabstrp is the bootstrap translator: a hand-coded
// recognizer, built directly from the MVM's public operations, that
// accepts a META syntax description (".SYNTAX name; rule*; .END") and
// emits MVM assembly implementing that grammar. It is the self-hosting
// fixed point of the toolkit: the emitted program, loaded and executed
// against the same grammar, reproduces this translator's own output.
package metabstrp

import (
	"io"
	"os"

	"metac/mvm"
)

// withCLL wraps recog in a CLL(lvl)/R pair, panicking if the returned
// instruction counter doesn't match lvl — an internal-invariant check
// on the recognizer's own call discipline, never expected to fire on
// a correctly nested grammar.
func withCLL(lvl int, m *mvm.M, recog func(*mvm.M) (bool, error)) (bool, error) {
	m.Cll(lvl)
	ok, err := recog(m)
	if ric := m.R(); ric != lvl {
		panic("metabstrp: internal recursion stack error")
	}
	return ok, err
}

func out1(m *mvm.M) (bool, error) {
	return withCLL(5, m, func(m *mvm.M) (bool, error) {
		switch {
		case m.Tst("*1"):
			m.Cl("GN1")
		case m.Tst("*2"):
			m.Cl("GN2")
		case m.Tst("*"):
			m.Cl("CI")
		case m.Sr():
			m.Cl("CL ")
			m.Ci()
		default:
			return false, nil
		}
		m.Out()
		return true, nil
	})
}

func output(m *mvm.M) (bool, error) {
	return withCLL(4, m, func(m *mvm.M) (bool, error) {
		switch {
		case m.Tst(".OUT"):
			m.Tst("(")
			if err := m.Be(); err != nil {
				return false, err
			}
			for {
				ok, err := out1(m)
				if err != nil {
					return false, err
				}
				if !ok {
					break
				}
			}
			m.Tst(")")
			if err := m.Be(); err != nil {
				return false, err
			}
		case m.Tst(".LABEL"):
			m.Cl("LB")
			m.Out()
			ok, err := out1(m)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, mvm.ErrUnexpected
			}
		default:
			return false, nil
		}
		m.Cl("OUT")
		m.Out()
		return true, nil
	})
}

func ex3(m *mvm.M) (bool, error) {
	return withCLL(3, m, func(m *mvm.M) (bool, error) {
		switch {
		case m.Id():
			m.Cl("CLL")
			m.Ci()
			m.Out()
		case m.Sr():
			m.Cl("TST ")
			m.Ci()
			m.Out()
		case m.Tst(".ID"):
			m.Cl("ID")
			m.Out()
		case m.Tst(".NUMBER"):
			m.Cl("NUM")
			m.Out()
		case m.Tst(".STRING"):
			m.Cl("SR")
			m.Out()
		case m.Tst("("):
			ok, err := ex1(m)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, mvm.ErrUnexpected
			}
			m.Tst(")")
			if err := m.Be(); err != nil {
				return false, err
			}
		case m.Tst(".EMPTY"):
			m.Cl("SET")
			m.Out()
		case m.Tst("$"):
			m.Lb()
			m.Gn1()
			m.Out()
			ok, err := ex3(m)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, mvm.ErrUnexpected
			}
			m.Cl("BT ")
			m.Gn1()
			m.Out()
			m.Cl("SET")
			m.Out()
		default:
			return false, nil
		}
		return true, nil
	})
}

func ex2(m *mvm.M) (bool, error) {
	return withCLL(2, m, func(m *mvm.M) (bool, error) {
		ok, err := ex3(m)
		if err != nil {
			return false, err
		}
		if ok {
			m.Cl("BF ")
			m.Gn1()
			m.Out()
		} else {
			ok, err := output(m)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		for {
			ok, err := ex3(m)
			if err != nil {
				return false, err
			}
			if ok {
				m.Cl("BE")
				m.Out()
				continue
			}
			ok, err = output(m)
			if err != nil {
				return false, err
			}
			if !ok {
				break
			}
		}
		m.Lb()
		m.Gn1()
		m.Out()
		return true, nil
	})
}

// ex1 pushes its own CLL(1) frame directly rather than through
// withCLL: an early Unrecognized return deliberately leaves that frame
// unpopped, matching the reference recognizer's own call discipline.
func ex1(m *mvm.M) (bool, error) {
	m.Cll(1)
	ok, err := ex2(m)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	for {
		if !m.Tst("/") {
			break
		}
		m.Cl("BT ")
		m.Gn1()
		m.Out()
		ok, err := ex2(m)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, mvm.ErrUnexpected
		}
	}
	m.Lb()
	m.Gn1()
	m.Out()
	if rc := m.R(); rc != 1 {
		panic("metabstrp: internal recursion stack error")
	}
	return true, nil
}

func st(m *mvm.M) (bool, error) {
	if !m.Id() {
		return false, nil
	}
	m.Lb()
	m.Ci()
	m.Out()
	m.Tst("=")
	if err := m.Be(); err != nil {
		return false, err
	}
	ok, err := ex1(m)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, mvm.ErrUnexpected
	}
	m.Tst(";")
	if err := m.Be(); err != nil {
		return false, err
	}
	m.Cl("R")
	m.Out()
	return true, nil
}

func program(m *mvm.M) (bool, error) {
	if !m.Tst(".SYNTAX") {
		return false, nil
	}
	m.Id()
	if err := m.Be(); err != nil {
		return false, err
	}
	m.Cl("ADR")
	m.Ci()
	m.Out()
	for {
		ok, err := st(m)
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
	}
	m.Tst(".END")
	if err := m.Be(); err != nil {
		return false, err
	}
	m.Cl("END")
	m.Out()
	return true, nil
}

// Translate runs the bootstrap recognizer against syntax and returns
// the generated MVM assembly, or the untrimmed remaining input if
// recognition failed.
func Translate(syntax string) mvm.Result {
	return TranslateWithTrace(syntax, nil)
}

// TranslateWithTrace is Translate with an optional execution trace
// sink for the recognizer's own underlying MVM instance.
func TranslateWithTrace(syntax string, trace io.Writer) mvm.Result {
	m := mvm.New(syntax)
	m.Trace = trace
	_, _ = program(m)
	out, err := m.Generated()
	if err != nil {
		return mvm.Result{Err: err, Left: m.Left()}
	}
	return mvm.Result{Output: out}
}

// TranslateFile reads the syntax description at path and translates
// it.
func TranslateFile(path string) mvm.Result {
	return TranslateFileWithTrace(path, nil)
}

// TranslateFileWithTrace is TranslateFile with an optional execution
// trace sink.
func TranslateFileWithTrace(path string, trace io.Writer) mvm.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return mvm.Result{Err: err}
	}
	return TranslateWithTrace(string(data), trace)
}
