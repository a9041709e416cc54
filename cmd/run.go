package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshare/app"
	"github.com/kilianp07/loadshare/config"
)

var runFlags struct {
	days  int
	hours int
	nodes int
	out   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Allocate the load profile and write the result",
	RunE:  runAllocation,
}

func init() {
	addRunFlags(runCmd)
	runCmd.Flags().StringVarP(&runFlags.out, "out", "o", "", "path of the primary output ({nodes} is expanded)")
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().IntVar(&runFlags.days, "days", 0, "number of days in the profile")
	c.Flags().IntVar(&runFlags.hours, "hours", 0, "number of periods per day")
	c.Flags().IntVarP(&runFlags.nodes, "nodes", "n", 0, "cluster size used to pick the catalog and name the output")
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	if cmd.Flags().Changed("days") {
		c.Run.Days = runFlags.days
	}
	if cmd.Flags().Changed("hours") {
		c.Run.Hours = runFlags.hours
	}
	if cmd.Flags().Changed("nodes") {
		c.Run.Nodes = runFlags.nodes
	}
	if f := cmd.Flags().Lookup("out"); f != nil && f.Changed {
		c.SetOutputPath(runFlags.out)
	}
	return c.Validate()
}

func runAllocation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	runner, err := app.New(cfg)
	if err != nil {
		return err
	}
	rep, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d entries from %d nodes, total weight %.4f, written to %v\n",
		rep.Meta.RunID, len(rep.Result), rep.Summary.Nodes, rep.Summary.TotalWeight, rep.Written)
	return nil
}
