// Package commands defines the etl command tree.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "Security event ETL pipeline",
	Long: `etl runs the security event pipeline: extract batches from the
source API into object storage, transform them through validation and
normalization, and load them into the warehouse.`,
	Version: "0.1.0",
}

// ExecuteContext runs the command tree with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger = logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("etl"))
	logging.SetDefault(logger)
}
