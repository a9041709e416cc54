package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshare/app"
	coremetrics "github.com/kilianp07/loadshare/core/metrics"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load both inputs and print each bus share without writing",
	RunE:  runInspect,
}

func init() {
	addRunFlags(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	runner, err := app.New(cfg)
	if err != nil {
		return err
	}
	rep, err := runner.Inspect(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "nodes: %d  entries: %d  total weight: %.4f  shape: %s\n",
		rep.Summary.Nodes, len(rep.Result), rep.Summary.TotalWeight, rep.Meta.Shape)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUS\tFRACTION\tENERGY")
	buses, energy := coremetrics.BusEnergy(rep.Result)
	for _, bus := range buses {
		fmt.Fprintf(tw, "%s\t%.6f\t%.2f\n", bus, rep.Summary.Fractions[bus], energy[bus])
	}
	for _, bus := range rep.Summary.Excluded {
		fmt.Fprintf(tw, "%s\t-\t-\n", bus)
	}
	return tw.Flush()
}
