package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cached package metadata",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.ClearCache()
		},
	}
	argparser.AddCommand(cmd)
}
