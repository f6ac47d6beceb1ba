package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadBatchID string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a batch's raw events into the warehouse",
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadBatchID, "batch-id", "", "batch to load")
	_ = loadCmd.MarkFlagRequired("batch-id")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := newStore(ctx)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	result, err := newLoader(store, repo).Run(ctx, loadBatchID)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded batch %s: %d inserted, %d skipped of %d\n",
		result.BatchID, result.Inserted, result.Skipped, result.EventCount)
	return nil
}
