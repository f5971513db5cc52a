package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"grnseeds/adapters/report"
	"grnseeds/domain/core"
	"grnseeds/domain/experiment"
	"grnseeds/internal/container"
	"grnseeds/ports"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var flags experimentFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Infer and write one network per dataset and seed",
		Long: `Run the configured algorithm on every dataset for every seed, in order.

Example: grnseeds run --algorithm grnboost2 --seed-count 100 --datasets net1,net3,net4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Experiment.DryRun = dryRun
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if err := c.InitRunner(cmd.Context()); err != nil {
				return err
			}
			if err := c.Runner.RunAll(cmd.Context(), cfg.Experiment.Algorithm); err != nil {
				return err
			}
			c.Logger.Info("batch %s finished", c.Runner.BatchID())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report every run without reading, inferring or writing")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var flags experimentFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List every (dataset, seed) run and its output path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			cfg.Experiment.DryRun = true

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			if err := c.InitRunner(cmd.Context()); err != nil {
				return err
			}
			planned, err := c.Runner.Plan(cfg.Experiment.Algorithm)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ALGORITHM\tDATASET\tSEED\tOUTPUT")
			for _, p := range planned {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Algorithm, p.Dataset.Name, p.Seed, p.OutputPath)
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	return cmd
}

func newStabilityCmd() *cobra.Command {
	var flags experimentFlags
	var topK int
	var reportPath string

	cmd := &cobra.Command{
		Use:   "stability",
		Short: "Compare the networks written for each dataset across seeds",
		Long: `Read {output_dir}/{dataset}.seed_{seed}.csv for every configured seed and
report top-K edge overlap (Jaccard), rank agreement (Spearman) and consensus edges.

Example: grnseeds stability --seed-count 10 --top-k 1000 --report stability.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("top-k") {
				cfg.Stability.TopK = topK
			}
			if cmd.Flags().Changed("report") {
				cfg.Stability.ReportPath = reportPath
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			algorithm, _, err := c.Registry.Resolve(cfg.Experiment.Algorithm)
			if err != nil {
				return err
			}

			reports, err := c.Stability.AnalyzeAll(cmd.Context(), algorithm, cfg.Experiment.Datasets,
				cfg.Experiment.Seeds, cfg.Experiment.OutputDir, cfg.Stability.TopK)
			if err != nil {
				return err
			}
			if cfg.Stability.ReportPath != "" {
				if err := report.WriteFile(cfg.Stability.ReportPath, reports); err != nil {
					return err
				}
				c.Logger.Info("stability report written to %s", cfg.Stability.ReportPath)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(report.Markdown(reports))
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&topK, "top-k", 1000, "Number of strongest edges compared per network")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the report to this file (.md or .html) instead of stdout")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var flags experimentFlags
	var batch string
	var dataset string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the run ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled() {
				return fmt.Errorf("no run ledger configured (set LEDGER_DRIVER or --ledger-driver)")
			}

			filter := ports.RunFilter{Dataset: dataset, Limit: limit}
			if batch != "" {
				id, err := core.ParseBatchID(batch)
				if err != nil {
					return err
				}
				filter.BatchID = id
			}
			if cmd.Flags().Changed("algorithm") {
				filter.Algorithm = experiment.Algorithm(cfg.Experiment.Algorithm)
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			if err := c.InitLedger(cmd.Context()); err != nil {
				return err
			}

			runs, err := c.Ledger.ListRuns(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BATCH\tALGORITHM\tDATASET\tSEED\tEDGES\tELAPSED\tSHA256\tOUTPUT")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
					r.BatchID, r.Algorithm, r.Dataset, r.Seed, r.EdgeCount, r.Elapsed(), r.OutputHash.Short(), r.OutputPath)
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&batch, "batch", "", "Only runs of this batch id")
	cmd.Flags().StringVar(&dataset, "dataset", "", "Only runs of this dataset")
	cmd.Flags().IntVar(&limit, "max", 0, "Maximum number of runs listed (0 = all)")
	return cmd
}
