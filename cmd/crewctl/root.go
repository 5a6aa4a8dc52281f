package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lyzr/crewledger/common/ledger"
	"github.com/lyzr/crewledger/common/lock"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/partition"
	"github.com/lyzr/crewledger/common/rotation"
)

const appVersion = "0.3.0"

// app carries the global flags and the engine built from them
type app struct {
	dataDir     string
	lockTimeout time.Duration
	logLevel    string

	engine *ledger.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "crewctl",
		Short:         "Crew rotation and overtime ledger tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.NewWithWriter(cmd.ErrOrStderr(), a.logLevel, "text")
			store := partition.NewFileStore(a.dataDir)
			a.engine = ledger.NewEngine(store, lock.NewKeyedMutex(a.lockTimeout), log)
		},
	}

	cmd.Version = appVersion
	cmd.SetVersionTemplate("crewctl v{{.Version}}\n")

	defaultDir := os.Getenv("DATA_DIR")
	if defaultDir == "" {
		defaultDir = "."
	}
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", defaultDir, "Directory holding SaveFiles/")
	cmd.PersistentFlags().DurationVar(&a.lockTimeout, "lock-timeout", 5*time.Second, "How long to wait for a partition lock")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newShiftsCmd(),
		newShowCmd(a),
		newRankCmd(a),
		newRolloverCmd(a),
	)
	return cmd
}

// selection holds the crew/year/month/kind flags shared by subcommands
type selection struct {
	crew  string
	year  int
	month int
	kind  string
}

func (s *selection) bind(cmd *cobra.Command, withMonth, withKind bool) {
	cmd.Flags().StringVar(&s.crew, "crew", "", "Crew (A, B, C or D)")
	cmd.Flags().IntVar(&s.year, "year", time.Now().Year(), "Year")
	_ = cmd.MarkFlagRequired("crew")
	if withMonth {
		cmd.Flags().IntVar(&s.month, "month", int(time.Now().Month()), "Month (1-12)")
	}
	if withKind {
		cmd.Flags().StringVar(&s.kind, "kind", string(ledger.Overtime), "Schedule kind (overtime or ws)")
	}
}

func (s *selection) context() (ledger.ScheduleContext, error) {
	crew, err := rotation.ParseCrew(s.crew)
	if err != nil {
		return ledger.ScheduleContext{}, err
	}
	kind := ledger.Overtime
	if s.kind != "" {
		if kind, err = ledger.ParseScheduleKind(s.kind); err != nil {
			return ledger.ScheduleContext{}, err
		}
	}
	sc := ledger.ScheduleContext{Crew: crew, Month: s.month, Year: s.year, Kind: kind}
	if s.month == 0 {
		sc.Month = 1
	}
	if err := sc.Validate(); err != nil {
		return ledger.ScheduleContext{}, err
	}
	return sc, nil
}
