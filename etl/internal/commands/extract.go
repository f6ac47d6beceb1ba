package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch a batch from the source API and land it in object storage",
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := newStore(ctx)
	if err != nil {
		return err
	}

	result, err := newExtractor(store).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted batch %s (%d events) to %s\n", result.BatchID, result.EventCount, result.Key)
	return nil
}
