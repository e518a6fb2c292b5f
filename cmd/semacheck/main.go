// Command semacheck runs semantic analysis over a pre-built program
// description and prints any diagnostics.
//
// Lexing and parsing a miscr source file is out of scope for this
// module: semacheck instead reads a small JSON program description (see
// programDoc in program.go) describing the same declarations a real frontend would
// hand to internal/pipeline, which is enough to exercise the full
// analysis pipeline end to end from the command line.
//
// Usage:
//
//	semacheck [options] <program.json>
//	cat program.json | semacheck [options]
//
// Options:
//
//	-v              Verbose (debug-level) phase logging
//	-q              Quiet: suppress all logging, print only diagnostics
//	--version       Print version and exit
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/rowlandz/miscr/pkg/api"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		verbose     bool
		quiet       bool
		showVersion bool
	)
	flag.BoolVar(&verbose, "v", false, "Verbose (debug-level) phase logging")
	flag.BoolVar(&quiet, "q", false, "Suppress logging, print only diagnostics")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "semacheck - miscr semantic analyzer v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: semacheck [options] <program.json>\n")
		fmt.Fprintf(os.Stderr, "       cat program.json | semacheck [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("semacheck v%s\n", version)
		return nil
	}

	var raw []byte
	var err error
	if flag.NArg() > 0 {
		raw, err = os.ReadFile(flag.Arg(0))
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			flag.Usage()
			return fmt.Errorf("no input file specified")
		}
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	var doc programDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing program JSON: %w", err)
	}
	decls, err := buildDecls(doc)
	if err != nil {
		return fmt.Errorf("building program: %w", err)
	}

	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	if quiet {
		level = hclog.Off
	}

	result := api.Check(decls, api.CheckOptions{Source: doc.Source, LogLevel: level})

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	for _, d := range result.Diagnostics {
		prefix := red.Sprintf("error[%s]", d.Code)
		if d.Severity == "warning" {
			prefix = yellow.Sprintf("warning[%s]", d.Code)
		}
		if d.Row > 0 {
			fmt.Printf("%s: %s (%d:%d)\n", prefix, d.Message, d.Row, d.Col)
		} else {
			fmt.Printf("%s: %s\n", prefix, d.Message)
		}
	}

	if !result.OK {
		return fmt.Errorf("analysis failed with %d diagnostic(s)", len(result.Diagnostics))
	}
	fmt.Println("ok")
	return nil
}
