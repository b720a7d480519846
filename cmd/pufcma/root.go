package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at link time: -ldflags "-X main.version=v1.2.3".
var version = "dev"

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "pufcma",
		Short: "Reliability-based CMA-ES modeling attack on XOR arbiter PUFs",
		Long: `pufcma learns the chains of an XOR arbiter PUF from how stable its
responses are under repeated queries, using a CMA-ES search per chain.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(newAttackCmd(flags), newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pufcma version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pufcma %s\n", version)
		},
	}
}
