// Command meta runs an MVM program against a source text.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"metac/config"
	"metac/mvm"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configPath  = flag.String("config", "", "Path to config file (default: platform config dir)")
		maxSteps    = flag.Uint64("max-steps", 0, "Abort after this many fetch-dispatch cycles (0: no limit)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("meta %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() != 2 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	pgmPath := flag.Arg(0)
	sourcePath := flag.Arg(1)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	steps := cfg.Execution.MaxSteps
	if *maxSteps != 0 {
		steps = *maxSteps
	}

	if *verboseMode {
		fmt.Fprintf(os.Stderr, "Loading MVM program: %s\n", pgmPath)
		fmt.Fprintf(os.Stderr, "Source: %s\n", sourcePath)
	}

	traceFile, err := openTrace(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace file: %v\n", err)
		os.Exit(1)
	}
	var trace io.Writer
	if traceFile != nil {
		defer traceFile.Close()
		trace = traceFile
	}

	res := mvm.RunFileWithOptions(pgmPath, sourcePath, steps, trace)
	if res.Err != nil {
		if errors.Is(res.Err, mvm.ErrUnexpected) || errors.Is(res.Err, mvm.ErrStepBudgetExceeded) {
			fmt.Printf("unexpected:\n%s\n", res.Left)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", res.Err)
		os.Exit(1)
	}
	fmt.Print(formatOutput(res.Output, cfg))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// openTrace opens the configured trace file, if tracing is enabled.
func openTrace(cfg *config.Config) (*os.File, error) {
	if !cfg.Trace.Enabled || cfg.Trace.OutputFile == "" {
		return nil, nil
	}
	return os.Create(cfg.Trace.OutputFile)
}

// formatOutput applies the configured output post-processing: when
// TrimTrailingSpace is set, each line's trailing spaces are stripped
// before printing.
func formatOutput(out string, cfg *config.Config) string {
	if !cfg.Output.TrimTrailingSpace {
		return out
	}
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func printHelp() {
	fmt.Println("meta - Meta Virtual Machine runner")
	fmt.Println()
	fmt.Println("Usage: meta [flags] <mvm-program> <source-file>")
	fmt.Println()
	flag.PrintDefaults()
}
