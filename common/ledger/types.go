package ledger

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lyzr/crewledger/common/rotation"
)

// MaxDays is the widest month grid; every day row holds at most this many cells
const MaxDays = 31

// PlaceholderName is the on-disk sentinel for a month with no crew members yet
const PlaceholderName = "[placeholder]"

// ScheduleKind selects which ledger shape a partition holds
type ScheduleKind string

const (
	Overtime     ScheduleKind = "overtime"
	WorkSchedule ScheduleKind = "work_schedule"
)

// ParseScheduleKind accepts the API/CLI spellings of a schedule kind
func ParseScheduleKind(s string) (ScheduleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overtime", "ot":
		return Overtime, nil
	case "work_schedule", "workschedule", "work-schedule", "ws":
		return WorkSchedule, nil
	default:
		return "", fmt.Errorf("unknown schedule kind: %q", s)
	}
}

// Prefix returns the file-name prefix used for the kind
func (k ScheduleKind) Prefix() string {
	if k == WorkSchedule {
		return "WS"
	}
	return "OT"
}

// Valid reports whether k is a known kind
func (k ScheduleKind) Valid() bool {
	return k == Overtime || k == WorkSchedule
}

// PartitionKey identifies one persisted year ledger
type PartitionKey struct {
	Kind ScheduleKind
	Crew rotation.Crew
	Year int
}

// String returns the storage name, e.g. OT_A_2024
func (k PartitionKey) String() string {
	return fmt.Sprintf("%s_%s_%d", k.Kind.Prefix(), k.Crew, k.Year)
}

// Validate checks crew, kind and year
func (k PartitionKey) Validate() error {
	if !k.Kind.Valid() {
		return fmt.Errorf("unknown schedule kind: %q", k.Kind)
	}
	if !k.Crew.Valid() {
		return &rotation.InvalidCrewError{Crew: string(k.Crew)}
	}
	if k.Year < 1 || k.Year > 9999 {
		return fmt.Errorf("invalid year: %d", k.Year)
	}
	return nil
}

// ScheduleContext is the crew/month/year/kind selection a caller is viewing
type ScheduleContext struct {
	Crew  rotation.Crew
	Month int
	Year  int
	Kind  ScheduleKind
}

// Key returns the partition the context lives in
func (sc ScheduleContext) Key() PartitionKey {
	return PartitionKey{Kind: sc.Kind, Crew: sc.Crew, Year: sc.Year}
}

// Validate checks every field of the context
func (sc ScheduleContext) Validate() error {
	if err := sc.Key().Validate(); err != nil {
		return err
	}
	if sc.Month < 1 || sc.Month > 12 {
		return fmt.Errorf("invalid month: %d", sc.Month)
	}
	return nil
}

// Cell is one day's hour entry. A zero Cell is blank.
type Cell struct {
	Value int
	Set   bool
}

// Hours returns a filled cell
func Hours(v int) Cell {
	return Cell{Value: v, Set: true}
}

// Int returns the cell's contribution to a sum
func (c Cell) Int() int {
	if !c.Set {
		return 0
	}
	return c.Value
}

// String renders the cell the way it is stored: blank or decimal digits
func (c Cell) String() string {
	if !c.Set {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// MemberLedger is one crew member's overtime record for one month.
// Totals are derived on demand and never stored on the struct.
type MemberLedger struct {
	Name            string
	StartingAsking  int
	StartingWorking int
	Working         []Cell
	Asking          []Cell
}

// Totals recomputes the running totals from the current cells
func (m MemberLedger) Totals() RunningTotals {
	return RecomputeRunningTotals(m)
}

// Clone returns a deep copy
func (m MemberLedger) Clone() MemberLedger {
	m.Working = slices.Clone(m.Working)
	m.Asking = slices.Clone(m.Asking)
	return m
}

// RoleRoster is one crew member's work-schedule row for one month
type RoleRoster struct {
	Name    string
	Entries []RoleCode
}

// Clone returns a deep copy
func (r RoleRoster) Clone() RoleRoster {
	r.Entries = slices.Clone(r.Entries)
	return r
}

// Sheet is one month of a partition: an ordered list of crew members with
// either hour ledgers (Overtime) or role rosters (WorkSchedule).
type Sheet struct {
	kind  ScheduleKind
	names []string
	hours map[string]*MemberLedger
	roles map[string]*RoleRoster
}

func newSheet(kind ScheduleKind) *Sheet {
	return &Sheet{
		kind:  kind,
		hours: make(map[string]*MemberLedger),
		roles: make(map[string]*RoleRoster),
	}
}

// Kind returns the sheet's schedule kind
func (s *Sheet) Kind() ScheduleKind { return s.kind }

// Empty reports whether the sheet has no crew members (stored as the placeholder)
func (s *Sheet) Empty() bool { return len(s.names) == 0 }

// Len returns the number of crew members
func (s *Sheet) Len() int { return len(s.names) }

// Names returns crew member names in display order
func (s *Sheet) Names() []string { return slices.Clone(s.names) }

// Has reports whether name is on the sheet
func (s *Sheet) Has(name string) bool {
	return slices.Contains(s.names, name)
}

// Member returns a copy of an overtime row
func (s *Sheet) Member(name string) (MemberLedger, bool) {
	m, ok := s.hours[name]
	if !ok {
		return MemberLedger{}, false
	}
	return m.Clone(), true
}

// Members returns copies of every overtime row in display order
func (s *Sheet) Members() []MemberLedger {
	out := make([]MemberLedger, 0, len(s.hours))
	for _, name := range s.names {
		if m, ok := s.hours[name]; ok {
			out = append(out, m.Clone())
		}
	}
	return out
}

// Roster returns a copy of a work-schedule row
func (s *Sheet) Roster(name string) (RoleRoster, bool) {
	r, ok := s.roles[name]
	if !ok {
		return RoleRoster{}, false
	}
	return r.Clone(), true
}

// Rosters returns copies of every work-schedule row in display order
func (s *Sheet) Rosters() []RoleRoster {
	out := make([]RoleRoster, 0, len(s.roles))
	for _, name := range s.names {
		if r, ok := s.roles[name]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Clone returns a deep copy
func (s *Sheet) Clone() *Sheet {
	c := newSheet(s.kind)
	c.names = slices.Clone(s.names)
	for name, m := range s.hours {
		cp := m.Clone()
		c.hours[name] = &cp
	}
	for name, r := range s.roles {
		cp := r.Clone()
		c.roles[name] = &cp
	}
	return c
}

// appendRow adds an empty row for name at the end of the sheet
func (s *Sheet) appendRow(name string) {
	s.names = append(s.names, name)
	if s.kind == Overtime {
		s.hours[name] = &MemberLedger{Name: name}
	} else {
		s.roles[name] = &RoleRoster{Name: name}
	}
}

func (s *Sheet) removeRow(name string) bool {
	i := slices.Index(s.names, name)
	if i < 0 {
		return false
	}
	s.names = slices.Delete(s.names, i, i+1)
	delete(s.hours, name)
	delete(s.roles, name)
	return true
}

func (s *Sheet) renameRow(oldName, newName string) bool {
	i := slices.Index(s.names, oldName)
	if i < 0 {
		return false
	}
	s.names[i] = newName
	if m, ok := s.hours[oldName]; ok {
		delete(s.hours, oldName)
		m.Name = newName
		s.hours[newName] = m
	}
	if r, ok := s.roles[oldName]; ok {
		delete(s.roles, oldName)
		r.Name = newName
		s.roles[newName] = r
	}
	return true
}

// moveRow moves name to position, clamped to the sheet bounds
func (s *Sheet) moveRow(name string, position int) bool {
	i := slices.Index(s.names, name)
	if i < 0 {
		return false
	}
	s.names = slices.Delete(s.names, i, i+1)
	position = max(0, min(position, len(s.names)))
	s.names = slices.Insert(s.names, position, name)
	return true
}

// YearLedger holds the twelve month sheets of one partition
type YearLedger struct {
	Key    PartitionKey
	months [12]*Sheet
}

// NewYearLedger returns a ledger whose every month is empty
func NewYearLedger(key PartitionKey) *YearLedger {
	y := &YearLedger{Key: key}
	for i := range y.months {
		y.months[i] = newSheet(key.Kind)
	}
	return y
}

// Month returns the sheet for month 1-12, or nil when out of range
func (y *YearLedger) Month(month int) *Sheet {
	if month < 1 || month > 12 {
		return nil
	}
	return y.months[month-1]
}

// Clone returns a deep copy
func (y *YearLedger) Clone() *YearLedger {
	c := &YearLedger{Key: y.Key}
	for i, s := range y.months {
		c.months[i] = s.Clone()
	}
	return c
}
