package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/xmlstore"
)

func newQueryCommand() *cobra.Command {
	var first bool

	cmd := &cobra.Command{
		Use:   "query <store> <selector>",
		Short: "Run a CSS selector against a store and print matching elements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := xmlstore.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			sel, err := xmlstore.ParseSelector(args[1])
			if err != nil {
				return err
			}

			if first {
				n, err := sel.MatchOne(store)
				if err != nil {
					return err
				}
				if n == nil {
					return nil
				}
				return printMatch(cmd, store, *n)
			}

			nodes, err := sel.MatchAll(store)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				if err := printMatch(cmd, store, n); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&first, "first", false, "stop at the first match")
	return cmd
}

func printMatch(cmd *cobra.Command, store *xmlstore.Store, n xmlstore.Node) error {
	attrs, err := store.Attrs(n.NodeID)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "#%d <%s", n.NodeID, n.Name)
	for _, a := range attrs {
		fmt.Fprintf(w, " %s=%q", a.Name, a.Value)
	}
	fmt.Fprintln(w, ">")
	return nil
}
