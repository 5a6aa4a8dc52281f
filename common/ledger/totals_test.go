package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeRunningTotals_Smith(t *testing.T) {
	m := MemberLedger{
		Name:            "Smith",
		StartingWorking: 5,
		StartingAsking:  5,
		Working:         []Cell{Hours(8), Hours(0)},
		Asking:          []Cell{Hours(2), Hours(0)},
	}

	got := RecomputeRunningTotals(m)
	assert.Equal(t, 13, got.TotalWorking)
	assert.Equal(t, []int{15, 15}, got.CumulativeAsking)
	assert.Equal(t, 15, got.TotalAsking)
}

func TestRecomputeRunningTotals_EmptyRow(t *testing.T) {
	got := RecomputeRunningTotals(MemberLedger{StartingWorking: 3, StartingAsking: 7})
	assert.Empty(t, got.CumulativeAsking)
	assert.Equal(t, 3, got.TotalWorking)
	assert.Equal(t, 7, got.TotalAsking)
}

func TestRecomputeRunningTotals_UnevenRowsAndBlanks(t *testing.T) {
	m := MemberLedger{
		Working: []Cell{{}, Hours(4), {}, Hours(1)},
		Asking:  []Cell{Hours(6)},
	}
	got := RecomputeRunningTotals(m)
	assert.Equal(t, []int{6, 10, 10, 11}, got.CumulativeAsking)
	assert.Equal(t, 5, got.TotalWorking)
	assert.Equal(t, 11, got.TotalAsking)
}

func TestRecomputeRunningTotals_TotalsMatchCells(t *testing.T) {
	m := MemberLedger{
		StartingWorking: 12,
		StartingAsking:  40,
		Working:         []Cell{Hours(8), {}, Hours(12), Hours(4)},
		Asking:          []Cell{{}, Hours(3), {}, Hours(9), Hours(1)},
	}

	first := RecomputeRunningTotals(m)
	second := RecomputeRunningTotals(m)
	assert.Equal(t, first, second)

	sumWork := 0
	for _, c := range m.Working {
		sumWork += c.Int()
	}
	assert.Equal(t, m.StartingWorking+sumWork, first.TotalWorking)
	assert.Equal(t, first.CumulativeAsking[len(first.CumulativeAsking)-1], first.TotalAsking)
	assert.Equal(t, m.Totals(), first)
}
