package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/xmlstore"
)

func newRedactCommand() *cobra.Command {
	var (
		maskUUIDs  bool
		ignoreTags []string
	)

	cmd := &cobra.Command{
		Use:   "redact <store>",
		Short: "Scrub and mask values in place; requires a store ingested with --infer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := xmlstore.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			var opts []xmlstore.RedactOption
			for _, tag := range ignoreTags {
				opts = append(opts, xmlstore.WithIgnoreRule(xmlstore.IgnoreRule{Tag: tag, AllowValue: true}))
			}
			if maskUUIDs {
				opts = append(opts, xmlstore.WithMaskUUIDs())
			}

			if err := store.Redact(opts...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "redaction complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&maskUUIDs, "mask-uuids", false, "deterministically rewrite UUID-shaped values instead of scrubbing them")
	cmd.Flags().StringArrayVar(&ignoreTags, "keep-text", nil, "element tag whose own text/comment/CData children are left unscrubbed (repeatable)")
	return cmd
}
