package ledger

// RunningTotals is the derived view of one crew member's month
type RunningTotals struct {
	// CumulativeAsking[i] is the asking balance at the end of day i+1
	CumulativeAsking []int
	TotalWorking     int
	TotalAsking      int
}

// RecomputeRunningTotals derives the running asking column and both totals
// from the full set of cells. Worked hours count toward the asking balance as
// well as the working total; the asking total is the last running value.
func RecomputeRunningTotals(m MemberLedger) RunningTotals {
	n := max(len(m.Working), len(m.Asking))

	out := RunningTotals{
		CumulativeAsking: make([]int, n),
		TotalWorking:     m.StartingWorking,
		TotalAsking:      m.StartingAsking,
	}

	running := m.StartingAsking
	for i := 0; i < n; i++ {
		work := cellAt(m.Working, i)
		ask := cellAt(m.Asking, i)
		running += work + ask
		out.CumulativeAsking[i] = running
		out.TotalWorking += work
	}
	if n > 0 {
		out.TotalAsking = out.CumulativeAsking[n-1]
	}

	return out
}

func cellAt(cells []Cell, i int) int {
	if i >= len(cells) {
		return 0
	}
	return cells[i].Int()
}
