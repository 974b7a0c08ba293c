package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wrangler/internal/domain"
)

func newIntegrityCmd(open appOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Check and repair catalog consistency",
	}
	cmd.AddCommand(newIntegrityCheckCmd(open))
	cmd.AddCommand(newIntegrityRepairCmd(open))
	return cmd
}

func newIntegrityCheckCmd(open appOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report catalog/schema divergences without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := a.Reconciler.Check(cmd.Context())
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}
}

func newIntegrityRepairCmd(open appOpener) *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Drop orphan tables and delete orphan descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			// Show the plan first; dropping tables is irreversible.
			plan, err := a.Reconciler.Repair(cmd.Context(), true)
			if err != nil {
				return err
			}
			if len(plan.Actions) == 0 {
				fmt.Fprintln(os.Stdout, "nothing to repair")
				return nil
			}
			printActions(plan.Actions)
			if dryRun {
				fmt.Fprintln(os.Stdout, "dry run: nothing was changed")
				return nil
			}
			if !yes && !confirm(fmt.Sprintf("apply %d repair actions?", len(plan.Actions))) {
				fmt.Fprintln(os.Stdout, "aborted")
				return nil
			}

			result, err := a.Reconciler.Repair(cmd.Context(), false)
			if err != nil {
				return err
			}
			applied := len(result.Actions) - len(result.Failures)
			fmt.Fprintf(os.Stdout, "%d actions applied, %d failed\n", applied, len(result.Failures))
			for _, f := range result.Failures {
				fmt.Fprintf(os.Stdout, "failed: %s %s: %s\n", f.Action.Kind, f.Action.TableName, f.Err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the repair plan without executing it")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func printReport(report *domain.IntegrityReport) {
	if report.TotalIssues() == 0 {
		fmt.Fprintln(os.Stdout, "catalog and schema are consistent")
		return
	}
	for _, family := range domain.Families {
		for _, table := range report.OrphanTables[family] {
			fmt.Fprintf(os.Stdout, "orphan table: %s (family %s, no descriptor)\n", table, family)
		}
	}
	for _, d := range report.OrphanDescriptors {
		fmt.Fprintf(os.Stdout, "orphan descriptor: %s %q (table %s missing)\n", d.Family, d.Name, d.TableName)
	}
	for _, ref := range report.DanglingRefs {
		fmt.Fprintf(os.Stdout, "dangling reference: enriched %q points at deleted dataset %d\n",
			ref.Name, ref.SourceDatasetID)
	}
	fmt.Fprintf(os.Stdout, "%d issues found\n", report.TotalIssues())
}

func printActions(actions []domain.RepairAction) {
	for _, a := range actions {
		switch a.Kind {
		case domain.RepairDropTable:
			fmt.Fprintf(os.Stdout, "would drop table %s (family %s)\n", a.TableName, a.Family)
		case domain.RepairDeleteDescriptor:
			fmt.Fprintf(os.Stdout, "would delete %s descriptor %d (%s)\n", a.Family, a.DescriptorID, a.Name)
		}
	}
}

// confirm prompts on the terminal. A non-interactive stdin counts as no.
func confirm(question string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "stdin is not a terminal; use --yes to confirm")
		return false
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
