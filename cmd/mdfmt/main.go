// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Command mdfmt formats Markdown documents.
//
// Usage:
//
//	mdfmt [flags] [FILE.md [...]]
//
// Each file is rewritten in place unless -stdout is given.
// With no files, mdfmt formats standard input to standard output.
// With -lsp, mdfmt speaks the Language Server Protocol on standard input and output.
//
// Settings are read from mdfmt.yaml in the working directory if it exists,
// or from the file named by -config.
// Flags override settings from the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"zombiezen.com/go/mdfmt/format"
	"zombiezen.com/go/mdfmt/internal/lsp"
)

// env is the process environment that run uses.
type env struct {
	stdin           io.Reader
	stdout          io.Writer
	stderr          io.Writer
	stdinIsTerminal bool
	// traceLevel is the default for the -trace flag.
	traceLevel   string
	setupTracing func(level string) error
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	traceLevel := os.Getenv("MDFMT_TRACE")
	if traceLevel == "" {
		traceLevel = "Error"
	}
	code := run(ctx, os.Args[1:], &env{
		stdin:           os.Stdin,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		stdinIsTerminal: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		traceLevel:      traceLevel,
		setupTracing:    setupTracing,
	})
	cancel()
	os.Exit(code)
}

type flags struct {
	stdout     bool
	maxWidth   int
	reflowText bool
	listMarker string
	configPath string
	lsp        bool
	trace      string
}

// run runs mdfmt and returns its exit code.
func run(ctx context.Context, args []string, e *env) int {
	fset := flag.NewFlagSet("mdfmt", flag.ContinueOnError)
	fset.SetOutput(e.stderr)
	fset.Usage = func() {
		fmt.Fprintln(fset.Output(), "usage: mdfmt [flags] [FILE.md [...]]")
		fset.PrintDefaults()
	}
	var f flags
	fset.BoolVar(&f.stdout, "stdout", false, "write formatted files to stdout instead of rewriting them")
	fset.IntVar(&f.maxWidth, "max-width", 0, "wrap paragraphs at `columns` (0 disables wrapping)")
	fset.BoolVar(&f.reflowText, "reflow-text", false, "join paragraph lines before wrapping them")
	fset.StringVar(&f.listMarker, "unordered-list-marker", "", "rewrite bullets to `marker` (*, + or -)")
	fset.StringVar(&f.configPath, "config", "", "read settings from YAML `file` (default "+defaultConfigPath+" if present)")
	fset.BoolVar(&f.lsp, "lsp", false, "run a language server on stdin and stdout")
	fset.StringVar(&f.trace, "trace", e.traceLevel, "trace `level` [Debug|Info|Error]")
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	usageError := func(err error) int {
		fmt.Fprintf(e.stderr, "mdfmt: %v\n", err)
		return 2
	}

	level, err := parseTraceLevel(f.trace)
	if err != nil {
		return usageError(err)
	}
	if e.setupTracing != nil {
		if err := e.setupTracing(level); err != nil {
			fmt.Fprintf(e.stderr, "mdfmt: %v\n", err)
			return 1
		}
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(e.stderr, "mdfmt: %v\n", err)
		return 1
	}
	fset.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "max-width":
			cfg.MaxWidth = f.maxWidth
		case "reflow-text":
			cfg.ReflowText = f.reflowText
		case "unordered-list-marker":
			cfg.UnorderedListMarker = f.listMarker
		}
	})
	opts, err := cfg.options()
	if err != nil {
		return usageError(err)
	}

	switch {
	case f.lsp && fset.NArg() > 0:
		return usageError(errors.New("-lsp does not take file arguments"))
	case f.lsp:
		rwc := lsp.Stdio(io.NopCloser(e.stdin), nopWriteCloser{e.stdout})
		err = lsp.Serve(ctx, rwc, opts)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	case fset.NArg() == 0 && e.stdinIsTerminal:
		return usageError(errors.New("no input files and stdin is a terminal"))
	case fset.NArg() == 0:
		err = formatStream(e.stdout, e.stdin, opts)
	default:
		err = formatFiles(ctx, e.stdout, fset.Args(), opts, f.stdout)
	}
	if err != nil {
		fmt.Fprintf(e.stderr, "mdfmt: %v\n", err)
		return 1
	}
	return 0
}

// formatStream formats all of r to w.
func formatStream(w io.Writer, r io.Reader, opts *format.Options) error {
	source, err := readSource(r)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return format.Format(w, source, opts)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
