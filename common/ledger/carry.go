package ledger

import "slices"

// PropagateForward carries each month's closing totals into the next month's
// starting balances for months fromMonth+1 through December. Only people on
// both sheets are touched; nobody is added to a month they are absent from.
// Work-schedule ledgers carry no hours and are left unchanged.
func PropagateForward(y *YearLedger, fromMonth int) {
	if y.Key.Kind != Overtime {
		return
	}
	for m := max(fromMonth+1, 2); m <= 12; m++ {
		prev := y.Month(m - 1)
		cur := y.Month(m)
		for _, name := range cur.names {
			p, ok := prev.hours[name]
			if !ok {
				continue
			}
			totals := p.Totals()
			c := cur.hours[name]
			c.StartingWorking = totals.TotalWorking
			c.StartingAsking = totals.TotalAsking
		}
	}
}

type rankEntry struct {
	name    string
	working int
	asking  int
}

// RolloverRanks ranks December's crew members for the next year. Each
// person's 0-based position in an ascending, stable sort by total working
// hours is their working rank; the list is then stably re-sorted by total
// asking hours for the asking rank, so asking ties keep working order.
func RolloverRanks(december *Sheet) (working, asking map[string]int) {
	entries := make([]rankEntry, 0, december.Len())
	for _, m := range december.Members() {
		t := m.Totals()
		entries = append(entries, rankEntry{name: m.Name, working: t.TotalWorking, asking: t.TotalAsking})
	}

	working = make(map[string]int, len(entries))
	asking = make(map[string]int, len(entries))

	slices.SortStableFunc(entries, func(a, b rankEntry) int { return a.working - b.working })
	for i, e := range entries {
		working[e.name] = i
	}
	slices.SortStableFunc(entries, func(a, b rankEntry) int { return a.asking - b.asking })
	for i, e := range entries {
		asking[e.name] = i
	}
	return working, asking
}

// SeedYear builds a new year ledger from the previous year's December sheet.
// Overtime ledgers start January at each person's rollover rank; every month
// lists December's crew in December's order. A nil or empty December yields
// an all-empty ledger.
func SeedYear(key PartitionKey, december *Sheet) *YearLedger {
	y := NewYearLedger(key)
	if december == nil || december.Empty() {
		return y
	}

	for m := 1; m <= 12; m++ {
		sheet := y.Month(m)
		for _, name := range december.names {
			sheet.appendRow(name)
		}
	}

	if key.Kind != Overtime || december.Kind() != Overtime {
		return y
	}

	working, asking := RolloverRanks(december)
	january := y.Month(1)
	for _, name := range january.names {
		m := january.hours[name]
		m.StartingWorking = working[name]
		m.StartingAsking = asking[name]
	}
	PropagateForward(y, 1)
	return y
}
