// Command metabstrp translates a META syntax description into MVM
// assembly and writes it to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"metac/config"
	"metac/metabstrp"
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
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("metabstrp %s\n", Version)
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

	syntaxPath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Fprintf(os.Stderr, "Translating: %s\n", syntaxPath)
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

	res := metabstrp.TranslateFileWithTrace(syntaxPath, trace)
	if res.Err != nil {
		if errors.Is(res.Err, mvm.ErrUnexpected) {
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
	fmt.Println("metabstrp - bootstrap META translator")
	fmt.Println()
	fmt.Println("Usage: metabstrp [flags] <syntax-file>")
	fmt.Println()
	flag.PrintDefaults()
}
