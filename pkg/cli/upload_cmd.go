package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wrangler/internal/domain"
)

func newUploadCmd(open appOpener) *cobra.Command {
	var (
		datasetID          int64
		overrideDuplicates bool
	)
	cmd := &cobra.Command{
		Use:   "upload --dataset <id> FILES...",
		Short: "Upload CSV/TSV files into a dataset",
		Long: `Uploads one or more tabular files into a dataset as a single batch.
Every file is reported individually: loaded with a row count, or skipped
with a reason. A skipped file never aborts the rest of the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]domain.BatchItem, 0, len(args))
			for _, path := range args {
				blob, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				items = append(items, domain.BatchItem{
					Filename: filepath.Base(path),
					Blob:     blob,
				})
			}

			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.Pipeline.Process(cmd.Context(), datasetID, items, domain.BatchOptions{
				OverrideDuplicates: overrideDuplicates,
			})
			if err != nil {
				return err
			}

			for _, item := range result.Successful {
				fmt.Fprintf(os.Stdout, "loaded:  %s (%d rows)\n", item.Filename, item.RowCount)
			}
			for _, item := range result.Skipped {
				fmt.Fprintf(os.Stdout, "skipped: %s [%s] %s\n", item.Filename, item.Skip, item.Reason)
			}
			fmt.Fprintf(os.Stdout, "%d/%d files loaded into %s, %d rows added\n",
				len(result.Successful), result.TotalFiles, result.DatasetName, result.TotalRowsAdded)
			return nil
		},
	}
	cmd.Flags().Int64Var(&datasetID, "dataset", 0, "Target dataset id")
	cmd.Flags().BoolVar(&overrideDuplicates, "override-duplicates", false,
		"Load files even when the filename was uploaded before")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
