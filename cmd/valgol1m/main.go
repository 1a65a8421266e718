// Command valgol1m runs an AVM program.
package main

import (
	"flag"
	"fmt"
	"os"

	"metac/avm"
	"metac/config"
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
		fmt.Printf("valgol1m %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() != 1 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	pgmPath := flag.Arg(0)

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
		fmt.Fprintf(os.Stderr, "Loading AVM program: %s\n", pgmPath)
	}

	pgm, err := avm.Load(pgmPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	traceFile, err := openTrace(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace file: %v\n", err)
		os.Exit(1)
	}
	if traceFile != nil {
		defer traceFile.Close()
	}

	m := avm.New()
	m.MaxSteps = steps
	if traceFile != nil {
		m.Trace = traceFile
	}
	if err := m.Execute(pgm); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
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

func printHelp() {
	fmt.Println("valgol1m - Arithmetic Virtual Machine runner")
	fmt.Println()
	fmt.Println("Usage: valgol1m [flags] <avm-program>")
	fmt.Println()
	flag.PrintDefaults()
}
