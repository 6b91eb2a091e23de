package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Drop a package from composer.json and delete it from vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			return o.Remove(args[0])
		},
	}
	argparser.AddCommand(cmd)
}
