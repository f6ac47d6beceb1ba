package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var transformBatchID string

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Validate and normalize a landed batch",
	RunE:  runTransform,
}

func init() {
	transformCmd.Flags().StringVar(&transformBatchID, "batch-id", "", "batch to transform")
	_ = transformCmd.MarkFlagRequired("batch-id")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
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

	transformer, closeDLQ, err := newTransformer(ctx, store, repo)
	if err != nil {
		return err
	}
	defer closeDLQ()

	result, err := transformer.Run(ctx, transformBatchID)
	if err != nil {
		return err
	}

	fmt.Printf("Transformed batch %s: %d normalized, %d rejected of %d\n",
		result.BatchID, result.Normalized, result.Rejected, result.InputCount)
	return nil
}
