// Command routecost inspects lookup metadata and encoded tag buffers.
//
//	routecost encode --meta lookups.dat highway=primary surface=asphalt
//	routecost decode --meta lookups.dat --reverse 3c
//	routecost stats  --meta lookups.dat --workers 4 ways-*.txt
//	routecost check  --config routecost.yaml ways.txt
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "routecost",
		Short: "Encode, decode and profile routing tag buffers",
		Long: `routecost works on the lookup vocabulary of a routing profile.

The vocabulary is read from a lookup metadata file given by --meta or by
profile.metadata in the config file (--config or $ROUTECOST_CONFIG).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $ROUTECOST_CONFIG)")

	root.AddCommand(
		newEncodeCmd(&configPath),
		newDecodeCmd(&configPath),
		newStatsCmd(&configPath),
		newCheckCmd(&configPath),
	)
	return root
}
