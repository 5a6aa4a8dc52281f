package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lyzr/crewledger/common/rotation"
)

func newShiftsCmd() *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "Print a crew's shift for every day of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			crew, err := rotation.ParseCrew(sel.crew)
			if err != nil {
				return err
			}
			labels, err := rotation.MonthlyShiftLabels(crew, sel.year, sel.month)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDAY\tSHIFT")
			for i, label := range labels {
				d := time.Date(sel.year, time.Month(sel.month), i+1, 0, 0, 0, 0, time.UTC)
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Format("2006-01-02"), d.Format("Mon"), shiftName(label))
			}
			return w.Flush()
		},
	}
	sel.bind(cmd, true, false)
	return cmd
}

func shiftName(s rotation.Shift) string {
	switch s {
	case rotation.Day:
		return "D"
	case rotation.Night:
		return "N"
	default:
		return "-"
	}
}
