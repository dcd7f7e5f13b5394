package main

import (
	"github.com/spf13/cobra"

	"github.com/arturoeanton/xmlstore"
	"github.com/arturoeanton/xmlstore/internal/printer"
)

func newFormatCommand() *cobra.Command {
	var (
		compact         bool
		indent          int
		maxLineLength   int
		hexEntities     bool
		indentTextNodes bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <store>",
		Short: "Render a store back to XML text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := xmlstore.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := printer.DefaultPretty()
			if compact {
				cfg = printer.DefaultCompact()
			}
			if indent > 0 {
				cfg.Indent = indent
			}
			if maxLineLength > 0 {
				cfg.MaxLineLength = maxLineLength
			}
			if hexEntities {
				cfg.EntityMode = printer.EntityHex
			}
			cfg.IndentTextNodes = indentTextNodes

			return store.Format(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "write without indentation")
	cmd.Flags().IntVar(&indent, "indent", 0, "spaces per nesting level (default 2)")
	cmd.Flags().IntVar(&maxLineLength, "max-line-length", 0, "attribute line-wrap threshold (default 80)")
	cmd.Flags().BoolVar(&hexEntities, "hex-entities", false, "emit numeric character references instead of named entities")
	cmd.Flags().BoolVar(&indentTextNodes, "indent-text-nodes", false, "indent text/CData children like element children")
	return cmd
}
