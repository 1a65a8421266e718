package mvm

import (
	"io"
	"os"
)

// Result is the outcome of one MVM run: either Output is set (the run
// generated translated text), or Left holds the untrimmed remaining
// input at the point recognition failed.
type Result struct {
	Output string
	Left   string
	Err    error
}

// RunFile assembles the MVM program at pgmPath and executes it
// against the source text at sourcePath, with no step budget or trace.
func RunFile(pgmPath, sourcePath string) Result {
	return RunFileWithOptions(pgmPath, sourcePath, 0, nil)
}

// RunFileWithBudget is RunFile with an execution step budget: 0
// disables the budget, matching RunFile's own behavior exactly.
func RunFileWithBudget(pgmPath, sourcePath string, maxSteps uint64) Result {
	return RunFileWithOptions(pgmPath, sourcePath, maxSteps, nil)
}

// RunFileWithOptions is RunFile with an execution step budget and an
// optional execution trace sink; either may be left at its zero value
// to match RunFile's behavior exactly.
func RunFileWithOptions(pgmPath, sourcePath string, maxSteps uint64, trace io.Writer) Result {
	pgm, err := Load(pgmPath)
	if err != nil {
		return Result{Err: err}
	}
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return Result{Err: err}
	}
	m := New(string(source))
	m.MaxSteps = maxSteps
	m.Trace = trace
	if err := m.Execute(pgm); err != nil {
		return Result{Err: err, Left: m.Left()}
	}
	out, err := m.Generated()
	if err != nil {
		return Result{Err: err, Left: m.Left()}
	}
	return Result{Output: out}
}
