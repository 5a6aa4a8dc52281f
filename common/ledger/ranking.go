package ledger

import (
	"fmt"
	"slices"
	"strings"
)

// RankBy selects the total a ranking is ordered by
type RankBy string

const (
	RankByAsking  RankBy = "asking"
	RankByWorking RankBy = "working"
)

// ParseRankBy accepts "asking" or "working"; blank means asking
func ParseRankBy(s string) (RankBy, error) {
	switch RankBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RankByAsking:
		return RankByAsking, nil
	case RankByWorking:
		return RankByWorking, nil
	default:
		return "", fmt.Errorf("unknown ranking %q, want asking or working", s)
	}
}

// Standing is one crew member's place in a month's ranking
type Standing struct {
	Position     int // 1-based
	Name         string
	TotalWorking int
	TotalAsking  int
}

// Rank orders an overtime sheet by the chosen total, highest first. Ties
// keep sheet order.
func Rank(sheet *Sheet, by RankBy) []Standing {
	out := make([]Standing, 0, sheet.Len())
	for _, m := range sheet.Members() {
		t := m.Totals()
		out = append(out, Standing{Name: m.Name, TotalWorking: t.TotalWorking, TotalAsking: t.TotalAsking})
	}

	key := func(s Standing) int { return s.TotalAsking }
	if by == RankByWorking {
		key = func(s Standing) int { return s.TotalWorking }
	}
	slices.SortStableFunc(out, func(a, b Standing) int { return key(b) - key(a) })

	for i := range out {
		out[i].Position = i + 1
	}
	return out
}
