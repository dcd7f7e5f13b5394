// Command xmlstore is a thin CLI over the xmlstore library: ingest an XML
// document into a relational store, run CSS selector queries against it,
// redact sensitive values, or pretty-print it back out.
//
// Subcommand shape and the file-or-stdin fallback generalize hand-rolled
// flag parsing to cobra subcommands the way termfx-morfx/cmd/morfx/main.go
// and Pieczasz-smf/cli/main.go both structure their CLIs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xmlstore:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "xmlstore",
		Short:         "Relational store, CSS selectors, and redaction for XML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newIngestCommand(),
		newQueryCommand(),
		newRedactCommand(),
		newFormatCommand(),
	)
	return root
}

// getInputReader opens args[0] as a file, or falls back to stdin when no
// file argument was given.
func getInputReader(args []string) (*os.File, func(), error) {
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return os.Stdin, func() {}, nil
	}
	return nil, nil, fmt.Errorf("no input provided (pass a file path or pipe one in)")
}
