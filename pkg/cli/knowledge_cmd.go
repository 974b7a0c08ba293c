package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wrangler/internal/service"
)

func newKnowledgeCmd(open appOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage knowledge tables",
	}
	cmd.AddCommand(newKnowledgeCreateCmd(open))
	cmd.AddCommand(newKnowledgeListCmd(open))
	cmd.AddCommand(newKnowledgeDeleteCmd(open))
	return cmd
}

func newKnowledgeCreateCmd(open appOpener) *cobra.Command {
	var (
		name       string
		dataType   string
		primaryKey string
		columns    string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a knowledge table",
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

			d, err := a.Lifecycle.CreateKnowledgeTable(cmd.Context(), service.CreateKnowledgeParams{
				Name:             name,
				DataType:         dataType,
				PrimaryKeyColumn: primaryKey,
				Columns:          schema,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created knowledge table %d (%s), table %s\n", d.ID, d.Name, d.TableName)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Knowledge table name")
	cmd.Flags().StringVar(&dataType, "type", "", "Data type (phone_numbers, emails, web_domains)")
	cmd.Flags().StringVar(&primaryKey, "primary-key", "", "Primary lookup column")
	cmd.Flags().StringVar(&columns, "columns", "", "Column declarations, e.g. 'phone:TEXT,carrier:TEXT'")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("primary-key")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func newKnowledgeListCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			tables, err := a.Lifecycle.ListKnowledgeTables(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tTABLE\tCOLUMNS")
			for _, d := range tables {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					d.ID, d.Name, d.DataType, d.TableName, strings.Join(d.Columns.Names(), ","))
			}
			return w.Flush()
		},
	}
}

func newKnowledgeDeleteCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge table and its descriptor",
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

			if err := a.Lifecycle.DeleteKnowledgeTable(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "deleted knowledge table %d\n", id)
			return nil
		},
	}
}
