package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRolloverCmd(a *app) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Start next year's ledger from this year's December",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sel.context()
			if err != nil {
				return err
			}

			y, err := a.engine.RolloverYear(cmd.Context(), sc.Crew, sc.Year, sc.Kind)
			if err != nil {
				return err
			}

			jan := y.Month(1)
			fmt.Fprintf(cmd.OutOrStdout(), "created %s with %d crew members\n", y.Key, jan.Len())
			if jan.Len() > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "order: %s\n", strings.Join(jan.Names(), ", "))
			}
			return nil
		},
	}
	sel.bind(cmd, false, true)
	return cmd
}
