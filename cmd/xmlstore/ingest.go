package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/xmlstore"
)

func newIngestCommand() *cobra.Command {
	var (
		out              string
		inferTypes       bool
		caseInsensitive  bool
		ignoreWhitespace bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Load an XML document into a new relational store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			r, closeReader, err := getInputReader(args)
			if err != nil {
				return err
			}
			defer closeReader()

			var opts []xmlstore.Option
			if inferTypes {
				opts = append(opts, xmlstore.WithTypeInference())
			}
			if caseInsensitive {
				opts = append(opts, xmlstore.WithCaseInsensitive())
			}
			if ignoreWhitespace {
				opts = append(opts, xmlstore.WithIgnoreWhitespace())
			}

			store, err := xmlstore.OpenFile(out, opts...)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Ingest(cmd.Context(), r); err != nil {
				return err
			}

			nodes, err := store.NodeCount()
			if err != nil {
				return err
			}
			elements, err := store.ElementCount()
			if err != nil {
				return err
			}
			attrs, err := store.AttrCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes, %d elements, %d attributes\n", out, nodes, elements, attrs)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "path to write the SQLite store to (required)")
	cmd.Flags().BoolVar(&inferTypes, "infer", false, "enable value type inference")
	cmd.Flags().BoolVar(&caseInsensitive, "case-insensitive", false, "fold element/attribute names and text to lowercase")
	cmd.Flags().BoolVar(&ignoreWhitespace, "ignore-whitespace", false, "trim text/CData/comment values")
	return cmd
}
