package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dump-autoload",
		Short: "Regenerate the autoload files from the current lockfile",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.DumpAutoload()
		},
	}
	argparser.AddCommand(cmd)
}
