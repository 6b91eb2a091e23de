package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phpp-dev/phpp/internal/cachepath"
	"github.com/phpp-dev/phpp/internal/manifest"
)

func init() {
	var flagGlobal bool
	var flagUnset bool

	cmd := &cobra.Command{
		Use:   "config [flags] <key> [value1] [value2]",
		Short: "Set or unset the repo.packagist repository override",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			if args[0] != "repo.packagist" {
				return fmt.Errorf("unrecognized config key %q: only repo.packagist is supported", args[0])
			}

			wd, err := os.Getwd()
			if err != nil {
				return err
			}

			if flagGlobal {
				configRoot, err := cachepath.ConfigRoot()
				if err != nil {
					return err
				}
				path := filepath.Join(configRoot, manifest.GlobalConfigFileName)
				g, err := manifest.LoadGlobalConfig(path)
				if err != nil {
					return err
				}
				if flagUnset {
					g.UnsetPackagistURL()
				} else {
					if len(args) != 3 {
						return fmt.Errorf("config repo.packagist requires <type> <url>")
					}
					g.SetPackagistURL(args[1], args[2])
				}
				return g.Save(path)
			}

			path := filepath.Join(wd, manifest.FileName)
			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			if flagUnset {
				m.UnsetPackagistURL()
			} else {
				if len(args) != 3 {
					return fmt.Errorf("config repo.packagist requires <type> <url>")
				}
				m.SetPackagistURL(args[1], args[2])
			}
			return m.Save(path)
		},
	}
	cmd.Flags().BoolVar(&flagGlobal, "global", false, "operate on the global configuration instead of composer.json")
	cmd.Flags().BoolVar(&flagUnset, "unset", false, "remove the repo.packagist override")
	argparser.AddCommand(cmd)
}
