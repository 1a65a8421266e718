package metabstrp

import (
	"testing"

	"metac/mvm"
)

// Reproduces the reference recognizer's own self-test: translating a
// small META grammar must yield this exact MVM assembly, byte for
// byte, including generated label numbering and trailing whitespace.
func TestProgramWorks(t *testing.T) {
	syntax := `
.SYNTAX A

A =  X / 'Y' ;

.END
`
	want := "        ADR A\n" +
		"A\n" +
		"        CLL X\n" +
		"        BF  A001 \n" +
		"A001 \n" +
		"        BT  A002 \n" +
		"        TST  'Y'\n" +
		"        BF  A003 \n" +
		"A003 \n" +
		"A002 \n" +
		"        R \n" +
		"        END \n" +
		"        "

	got := Translate(syntax)
	if got.Err != nil {
		t.Fatalf("translate failed: %v (left=%q)", got.Err, got.Left)
	}
	if got.Output != want {
		t.Fatalf("output mismatch\n got: %q\nwant: %q", got.Output, want)
	}
}

// A grammar whose every referenced rule is itself defined produces
// assembly that loads cleanly through mvm.Parse (the single-rule
// grammar above references X, which it never defines, so it cannot be
// used for this check). The loaded program is not executed here.
func TestEmittedAssemblySelfContainedGrammarLoads(t *testing.T) {
	syntax := `
.SYNTAX A

A = 'Y' / 'Z' ;

.END
`
	res := Translate(syntax)
	if res.Err != nil {
		t.Fatalf("translate failed: %v (left=%q)", res.Err, res.Left)
	}
	if _, err := mvm.Parse(res.Output); err != nil {
		t.Fatalf("emitted assembly failed to load: %v\n%s", err, res.Output)
	}
}
