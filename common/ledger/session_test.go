package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/rotation"
)

func newTestSession(t *testing.T, names ...string) *Session {
	t.Helper()
	sheet := newSheet(Overtime)
	for _, n := range names {
		sheet.appendRow(n)
	}
	s, err := NewSession(otContext(2), sheet)
	require.NoError(t, err)
	return s
}

func TestSession_StateMachine(t *testing.T) {
	s := newTestSession(t, "Smith", "Jones")
	assert.Equal(t, StateClean, s.State("Smith"))

	require.NoError(t, s.Edit("Smith", 3, FieldWorking, "8"))
	assert.Equal(t, StateEditing, s.State("Smith"))
	assert.Equal(t, StateClean, s.State("Jones"))

	totals, err := s.Commit("Smith")
	require.NoError(t, err)
	assert.Equal(t, StateRecomputed, s.State("Smith"))
	assert.Equal(t, []int{0, 0, 8}, totals.CumulativeAsking)

	again, err := s.Commit("Smith")
	require.NoError(t, err)
	assert.Equal(t, totals, again)
	assert.Equal(t, StateRecomputed, s.State("Smith"))

	_, err = s.Commit("Jones")
	require.NoError(t, err)
	assert.Equal(t, StateClean, s.State("Jones"))
	assert.Equal(t, []string{"Smith"}, s.Dirty())
}

func TestSession_InvalidEditChangesNothing(t *testing.T) {
	s := newTestSession(t, "Smith")
	require.NoError(t, s.Edit("Smith", 1, FieldAsking, "4"))
	_, err := s.Commit("Smith")
	require.NoError(t, err)

	err = s.Edit("Smith", 1, FieldAsking, "-1")
	var ie *InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Smith", ie.Member)
	assert.Equal(t, 1, ie.Day)
	assert.Equal(t, InvalidInputMessage, err.Error())

	assert.Equal(t, StateRecomputed, s.State("Smith"))
	m, _ := s.Member("Smith")
	assert.Equal(t, []Cell{Hours(4)}, m.Asking)
}

func TestSession_EditBounds(t *testing.T) {
	s := newTestSession(t, "Smith")

	// February 2024 has 29 days
	require.NoError(t, s.Edit("Smith", 29, FieldWorking, "1"))
	var ie *InvalidInputError
	require.ErrorAs(t, s.Edit("Smith", 30, FieldWorking, "1"), &ie)
	require.ErrorAs(t, s.Edit("Smith", 0, FieldWorking, "1"), &ie)

	assert.ErrorIs(t, s.Edit("Nobody", 1, FieldWorking, "1"), ErrMemberNotFound)
	assert.ErrorIs(t, s.Edit("Smith", 1, FieldRole, "V"), ErrKindMismatch)
}

func TestSession_ClearingACell(t *testing.T) {
	s := newTestSession(t, "Smith")
	require.NoError(t, s.Edit("Smith", 2, FieldWorking, "6"))
	require.NoError(t, s.Edit("Smith", 2, FieldWorking, ""))

	m, _ := s.Member("Smith")
	assert.Equal(t, []Cell{{}, {}}, m.Working)
	assert.Equal(t, []CellChange{
		{Member: "Smith", Day: 2, Field: FieldWorking, Old: "", New: "6"},
		{Member: "Smith", Day: 2, Field: FieldWorking, Old: "6", New: ""},
	}, s.Changes())
}

func TestSession_SaveWritesDirtyRowsOnly(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.SaveMonth(ctx, otContext(2), []MemberLedger{
		{Name: "Smith", Working: []Cell{Hours(1)}},
		{Name: "Jones", Working: []Cell{Hours(2)}},
	}))

	sheet, err := e.LoadMonth(ctx, otContext(2))
	require.NoError(t, err)
	s, err := NewSession(otContext(2), sheet)
	require.NoError(t, err)

	// someone else updates Jones after the session was opened
	require.NoError(t, e.SaveMonth(ctx, otContext(2), []MemberLedger{{Name: "Jones", Working: []Cell{Hours(5)}}}))

	require.NoError(t, s.Edit("Smith", 1, FieldWorking, "3"))
	require.NoError(t, s.Save(ctx, e))
	assert.Equal(t, StateSaved, s.State("Smith"))
	assert.Equal(t, StateClean, s.State("Jones"))
	assert.Empty(t, s.Dirty())

	sheet, err = e.LoadMonth(ctx, otContext(2))
	require.NoError(t, err)
	smith, _ := sheet.Member("Smith")
	jones, _ := sheet.Member("Jones")
	assert.Equal(t, []Cell{Hours(3)}, smith.Working)
	assert.Equal(t, []Cell{Hours(5)}, jones.Working)

	require.NoError(t, s.Save(ctx, e))
}

func TestSession_WorkSchedule(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	sc := ScheduleContext{Crew: rotation.CrewB, Month: 1, Year: 2024, Kind: WorkSchedule}
	require.NoError(t, e.AddMember(ctx, sc, "Smith"))

	sheet, err := e.LoadMonth(ctx, sc)
	require.NoError(t, err)
	s, err := NewSession(sc, sheet)
	require.NoError(t, err)

	require.NoError(t, s.Edit("Smith", 2, FieldRole, "v"))
	var ie *InvalidInputError
	require.ErrorAs(t, s.Edit("Smith", 3, FieldRole, "ZZ"), &ie)
	assert.ErrorIs(t, s.Edit("Smith", 1, FieldWorking, "8"), ErrKindMismatch)
	require.NoError(t, s.Save(ctx, e))

	sheet, err = e.LoadMonth(ctx, sc)
	require.NoError(t, err)
	r, _ := sheet.Roster("Smith")
	assert.Equal(t, []RoleCode{"", "V"}, r.Entries)
}

func TestNewSession_KindMismatch(t *testing.T) {
	_, err := NewSession(otContext(1), newSheet(WorkSchedule))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestSession_ConcurrentSessionsKeepEachOthersCells(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.AddMember(ctx, otContext(1), "Smith"))

	sheet, err := e.LoadMonth(ctx, otContext(1))
	require.NoError(t, err)
	first, err := NewSession(otContext(1), sheet)
	require.NoError(t, err)
	second, err := NewSession(otContext(1), sheet)
	require.NoError(t, err)

	require.NoError(t, first.Edit("Smith", 1, FieldWorking, "8"))
	require.NoError(t, second.Edit("Smith", 2, FieldWorking, "4"))
	require.NoError(t, first.Save(ctx, e))
	require.NoError(t, second.Save(ctx, e))

	sheet, err = e.LoadMonth(ctx, otContext(1))
	require.NoError(t, err)
	smith, _ := sheet.Member("Smith")
	assert.Equal(t, []Cell{Hours(8), Hours(4)}, smith.Working)
	assert.Equal(t, 12, smith.Totals().TotalWorking)

	feb, err := e.LoadMonth(ctx, otContext(2))
	require.NoError(t, err)
	smithFeb, _ := feb.Member("Smith")
	assert.Equal(t, 12, smithFeb.StartingWorking)
}

func TestSession_SaveRejectsMemberRemovedMeanwhile(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.AddMember(ctx, otContext(1), "Smith"))
	require.NoError(t, e.AddMember(ctx, otContext(1), "Jones"))

	sheet, err := e.LoadMonth(ctx, otContext(3))
	require.NoError(t, err)
	s, err := NewSession(otContext(3), sheet)
	require.NoError(t, err)
	require.NoError(t, s.Edit("Jones", 1, FieldAsking, "6"))
	require.NoError(t, s.Edit("Smith", 1, FieldAsking, "2"))

	require.NoError(t, e.RemoveMember(ctx, otContext(2), "Jones"))

	assert.ErrorIs(t, s.Save(ctx, e), ErrMemberNotFound)
	assert.Equal(t, StateRecomputed, s.State("Jones"))

	for m := 2; m <= 12; m++ {
		sheet, err := e.LoadMonth(ctx, otContext(m))
		require.NoError(t, err)
		assert.False(t, sheet.Has("Jones"), "month %d", m)
	}
	sheet, err = e.LoadMonth(ctx, otContext(3))
	require.NoError(t, err)
	smith, _ := sheet.Member("Smith")
	assert.Empty(t, smith.Asking)
}
