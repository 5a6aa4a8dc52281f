package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lyzr/crewledger/common/condition"
	"github.com/lyzr/crewledger/common/ledger"
)

func newRankCmd(a *app) *cobra.Command {
	var (
		sel    selection
		by     string
		filter string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank an overtime month by total asking or working hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sel.context()
			if err != nil {
				return err
			}
			rankBy, err := ledger.ParseRankBy(by)
			if err != nil {
				return err
			}

			var eval *condition.Evaluator
			if filter != "" {
				if eval, err = condition.NewEvaluator(); err != nil {
					return err
				}
				if err := eval.Compile(filter); err != nil {
					return fmt.Errorf("invalid --filter: %w", err)
				}
			}

			sheet, err := a.engine.LoadMonth(cmd.Context(), sc)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tTOTAL W\tTOTAL A")
			for _, st := range ledger.Rank(sheet, rankBy) {
				if eval != nil {
					ok, err := eval.Evaluate(filter, map[string]interface{}{
						condition.VarMember: map[string]interface{}{
							"name":          st.Name,
							"total_working": st.TotalWorking,
							"total_asking":  st.TotalAsking,
							"position":      st.Position,
						},
						condition.VarMonth: sc.Month,
					})
					if err != nil {
						return fmt.Errorf("invalid --filter: %w", err)
					}
					if !ok {
						continue
					}
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", st.Position, st.Name, st.TotalWorking, st.TotalAsking)
			}
			return w.Flush()
		},
	}
	sel.bind(cmd, true, false)
	cmd.Flags().StringVar(&by, "by", string(ledger.RankByAsking), "Rank by asking or working")
	cmd.Flags().StringVar(&filter, "filter", "", "CEL filter over member, e.g. member.total_asking < 40")
	return cmd
}
