package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshare/config"
	"github.com/kilianp07/loadshare/infra/logger"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "loadshare",
	Short:         "Split an aggregate load profile across network buses",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.Configure(c.Logging.Options()); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
