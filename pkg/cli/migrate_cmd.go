package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Converge the database schema and report what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res := a.MigrationResult
			for _, step := range res.Applied {
				fmt.Fprintf(os.Stdout, "applied: %s\n", step)
			}
			for _, step := range res.Skipped {
				fmt.Fprintf(os.Stdout, "up to date: %s\n", step)
			}
			if res.IndexFailures > 0 {
				fmt.Fprintf(os.Stdout, "index failures: %d (see log)\n", res.IndexFailures)
			}
			return nil
		},
	}
}
