package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Resolve and install every package declared in composer.json",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.Install("")
		},
	}
	argparser.AddCommand(cmd)
}
