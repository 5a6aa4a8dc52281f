package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lyzr/crewledger/common/ledger"
)

func newShowCmd(a *app) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one month of a ledger with running totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sel.context()
			if err != nil {
				return err
			}
			sheet, err := a.engine.LoadMonth(cmd.Context(), sc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s month %d\n", sc.Key(), sc.Month)
			if sheet.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no crew members")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if sc.Kind == ledger.WorkSchedule {
				fmt.Fprintln(w, "NAME\tROLES")
				for _, r := range sheet.Rosters() {
					fmt.Fprintf(w, "%s\t%s\n", r.Name, joinDays(ledger.RoleStrings(r.Entries)))
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "NAME\tSTART W\tSTART A\tWORKING\tASKING\tTOTAL W\tTOTAL A")
			for _, m := range sheet.Members() {
				t := m.Totals()
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%d\t%d\n",
					m.Name,
					m.StartingWorking,
					m.StartingAsking,
					joinDays(ledger.CellStrings(m.Working)),
					joinDays(ledger.CellStrings(m.Asking)),
					t.TotalWorking,
					t.TotalAsking)
			}
			return w.Flush()
		},
	}
	sel.bind(cmd, true, true)
	return cmd
}

// joinDays renders a row compactly, "." for blank days
func joinDays(days []string) string {
	if len(days) == 0 {
		return "-"
	}
	out := make([]string, len(days))
	for i, d := range days {
		if d == "" {
			d = "."
		}
		out[i] = d
	}
	return strings.Join(out, " ")
}
