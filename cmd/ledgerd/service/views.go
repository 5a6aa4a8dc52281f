package service

import (
	"github.com/lyzr/crewledger/common/ledger"
	"github.com/lyzr/crewledger/common/rotation"
)

// MonthView is the read model of one month of a partition
type MonthView struct {
	Partition string              `json:"partition"`
	Kind      ledger.ScheduleKind `json:"kind"`
	Crew      rotation.Crew       `json:"crew"`
	Year      int                 `json:"year"`
	Month     int                 `json:"month"`
	Days      int                 `json:"days"`
	Members   []MemberView        `json:"members"`
}

// MemberView is one row of a MonthView. Overtime rows carry hours and
// totals; work-schedule rows carry roles.
type MemberView struct {
	Name             string   `json:"name"`
	StartingWorking  int      `json:"starting_working,omitempty"`
	StartingAsking   int      `json:"starting_asking,omitempty"`
	Working          []string `json:"working,omitempty"`
	Asking           []string `json:"asking,omitempty"`
	CumulativeAsking []int    `json:"cumulative_asking,omitempty"`
	TotalWorking     int      `json:"total_working,omitempty"`
	TotalAsking      int      `json:"total_asking,omitempty"`
	Roles            []string `json:"roles,omitempty"`
}

// MonthEdit is the editable form of a month: raw strings per day, index 0
// is day 1. It is both the PUT body and the document PATCH operates on.
type MonthEdit struct {
	Members []RowEdit `json:"members"`
}

// RowEdit holds the raw entries for one crew member
type RowEdit struct {
	Name    string   `json:"name"`
	Working []string `json:"working,omitempty"`
	Asking  []string `json:"asking,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

// AuditEntry is one saved cell change
type AuditEntry struct {
	AuditID string       `json:"audit_id"`
	Member  string       `json:"member"`
	Day     int          `json:"day"`
	Field   ledger.Field `json:"field"`
	Old     string       `json:"old"`
	New     string       `json:"new"`
}

// SaveResult is returned by month edits
type SaveResult struct {
	Changes []AuditEntry `json:"changes"`
	Month   *MonthView   `json:"month"`
}

// StandingView is one ranking row
type StandingView struct {
	Position     int    `json:"position"`
	Name         string `json:"name"`
	TotalWorking int    `json:"total_working"`
	TotalAsking  int    `json:"total_asking"`
}

func newMonthView(sc ledger.ScheduleContext, sheet *ledger.Sheet) *MonthView {
	v := &MonthView{
		Partition: sc.Key().String(),
		Kind:      sc.Kind,
		Crew:      sc.Crew,
		Year:      sc.Year,
		Month:     sc.Month,
		Days:      rotation.DaysInMonth(sc.Year, sc.Month),
		Members:   make([]MemberView, 0, sheet.Len()),
	}

	if sc.Kind == ledger.WorkSchedule {
		for _, r := range sheet.Rosters() {
			v.Members = append(v.Members, MemberView{Name: r.Name, Roles: ledger.RoleStrings(r.Entries)})
		}
		return v
	}

	for _, m := range sheet.Members() {
		t := m.Totals()
		v.Members = append(v.Members, MemberView{
			Name:             m.Name,
			StartingWorking:  m.StartingWorking,
			StartingAsking:   m.StartingAsking,
			Working:          ledger.CellStrings(m.Working),
			Asking:           ledger.CellStrings(m.Asking),
			CumulativeAsking: t.CumulativeAsking,
			TotalWorking:     t.TotalWorking,
			TotalAsking:      t.TotalAsking,
		})
	}
	return v
}

// newMonthEdit renders a sheet as raw strings padded to the month's length so
// that every day has an addressable JSON Pointer
func newMonthEdit(sc ledger.ScheduleContext, sheet *ledger.Sheet) *MonthEdit {
	days := rotation.DaysInMonth(sc.Year, sc.Month)
	edit := &MonthEdit{Members: make([]RowEdit, 0, sheet.Len())}

	if sc.Kind == ledger.WorkSchedule {
		for _, r := range sheet.Rosters() {
			edit.Members = append(edit.Members, RowEdit{Name: r.Name, Roles: pad(ledger.RoleStrings(r.Entries), days)})
		}
		return edit
	}

	for _, m := range sheet.Members() {
		edit.Members = append(edit.Members, RowEdit{
			Name:    m.Name,
			Working: pad(ledger.CellStrings(m.Working), days),
			Asking:  pad(ledger.CellStrings(m.Asking), days),
		})
	}
	return edit
}

func newStandingViews(standings []ledger.Standing) []StandingView {
	out := make([]StandingView, len(standings))
	for i, s := range standings {
		out[i] = StandingView{Position: s.Position, Name: s.Name, TotalWorking: s.TotalWorking, TotalAsking: s.TotalAsking}
	}
	return out
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
