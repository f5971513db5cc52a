package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "grnseeds",
		Short: "Run GRN inference across datasets and random seeds",
		Long: `grnseeds runs GENIE3 or GRNBoost2 on benchmark expression datasets once per
random seed and writes every inferred network to
{output_dir}/{dataset}.seed_{seed}.csv.

Configuration comes from the environment (and .env), optionally a JSON plan
file, and finally command line flags, each overriding the previous.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newStabilityCmd(),
		newRunsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
