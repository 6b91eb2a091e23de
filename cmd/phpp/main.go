// Command phpp resolves, installs, and generates autoload files for a
// PHP project's composer.json-style manifest.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phpp-dev/phpp/internal/cachepath"
	"github.com/phpp-dev/phpp/internal/orchestrator"
	"github.com/phpp-dev/phpp/internal/ui"
)

const defaultRegistryURL = "https://repo.packagist.org"

var argparser = &cobra.Command{
	Use:           "phpp {[flags]|SUBCOMMAND...}",
	Short:         "A PHP package manager core: resolve, install, and generate autoload files",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var flagVerbose bool

func init() {
	argparser.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print diagnostic output")
}

// newOrchestrator wires an Orchestrator rooted at the current working
// directory, honoring a composer.json repositories.packagist override
// if the project manifest declares one, falling back to the global
// config, then to the default registry.
func newOrchestrator() (*orchestrator.Orchestrator, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	registryURL, err := resolveRegistryURL(wd)
	if err != nil {
		return nil, err
	}

	cacheRoot, err := cachepath.CacheRoot()
	if err != nil {
		return nil, err
	}

	streams := ui.Default()
	streams.Verbose = flagVerbose

	return orchestrator.New(wd, registryURL, cacheRoot, streams), nil
}

func main() {
	if err := argparser.Execute(); err != nil {
		fmt.Fprintf(argparser.ErrOrStderr(), "%s: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
