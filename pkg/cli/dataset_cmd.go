package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wrangler/internal/domain"
	"wrangler/internal/service"
)

func newDatasetCmd(open appOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage dataset tables",
	}
	cmd.AddCommand(newDatasetCreateCmd(open))
	cmd.AddCommand(newDatasetListCmd(open))
	cmd.AddCommand(newDatasetDeleteCmd(open))
	cmd.AddCommand(newDatasetStatsCmd(open))
	return cmd
}

func newDatasetCreateCmd(open appOpener) *cobra.Command {
	var (
		name        string
		slot        int
		columns     string
		blobColumns []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dataset and its table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := parseColumns(columns)
			if err != nil {
				return err
			}
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := a.Lifecycle.CreateDataset(cmd.Context(), service.CreateDatasetParams{
				Name:        name,
				Slot:        slot,
				Columns:     schema,
				BlobColumns: blobColumns,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created dataset %d (%s) in slot %d, table %s\n",
				d.ID, d.Name, d.Slot, d.TableName)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Dataset name")
	cmd.Flags().IntVar(&slot, "slot", 0, "Dataset slot (1-5)")
	cmd.Flags().StringVar(&columns, "columns", "", "Column declarations, e.g. 'company:TEXT,employees:INTEGER'")
	cmd.Flags().StringSliceVar(&blobColumns, "blob-columns", nil, "Columns holding large values")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("slot")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func newDatasetListCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			datasets, err := a.Lifecycle.ListDatasets(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLOT\tNAME\tTABLE\tCOLUMNS")
			for _, d := range datasets {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
					d.ID, d.Slot, d.Name, d.TableName, strings.Join(d.Columns.Names(), ","))
			}
			return w.Flush()
		},
	}
}

func newDatasetDeleteCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dataset, its table, and derived enriched tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Lifecycle.DeleteDataset(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "deleted dataset %d\n", id)
			return nil
		},
	}
}

func newDatasetStatsCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Show row and upload statistics for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := a.Lifecycle.Statistics(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "dataset:   %s (slot %d, table %s)\n",
				stats.Descriptor.Name, stats.Descriptor.Slot, stats.Descriptor.TableName)
			fmt.Fprintf(os.Stdout, "rows:      %d\n", stats.RowCount)
			fmt.Fprintf(os.Stdout, "uploads:   %d\n", stats.UploadCount)
			if stats.FirstUploadAt != nil {
				fmt.Fprintf(os.Stdout, "first:     %s\n", stats.FirstUploadAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(os.Stdout, "last:      %s\n", stats.LastUploadAt.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(os.Stdout, "enriched:  %d\n", stats.EnrichedCount)
			return nil
		},
	}
}

// parseColumns parses "name:TYPE,name:TYPE" declarations. The type defaults
// to TEXT when omitted.
func parseColumns(spec string) (domain.ColumnSchema, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("no columns declared")
	}
	var schema domain.ColumnSchema
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, colType := part, domain.TypeText
		if i := strings.IndexByte(part, ':'); i >= 0 {
			name = strings.TrimSpace(part[:i])
			colType = strings.ToUpper(strings.TrimSpace(part[i+1:]))
		}
		schema = append(schema, domain.ColumnSpec{Name: name, Type: colType})
	}
	return schema, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
