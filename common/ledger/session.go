package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/lyzr/crewledger/common/rotation"
)

// EditState tracks one crew member's row through an edit session
type EditState int

const (
	StateClean EditState = iota
	StateEditing
	StateRecomputed
	StateSaved
)

func (s EditState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateEditing:
		return "editing"
	case StateRecomputed:
		return "recomputed"
	case StateSaved:
		return "saved"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// CellChange records one accepted edit
type CellChange struct {
	Member string
	Day    int
	Field  Field
	Old    string
	New    string
}

type sessionRow struct {
	member MemberLedger
	roster RoleRoster
	state  EditState
}

// Session buffers edits to one month until they are saved. It is not safe
// for concurrent use.
type Session struct {
	sc      ScheduleContext
	days    int
	names   []string
	rows    map[string]*sessionRow
	changes []CellChange
	saved   int
}

// NewSession starts editing a copy of sheet
func NewSession(sc ScheduleContext, sheet *Sheet) (*Session, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if sheet.Kind() != sc.Kind {
		return nil, fmt.Errorf("new session: %w", ErrKindMismatch)
	}

	s := &Session{
		sc:    sc,
		days:  rotation.DaysInMonth(sc.Year, sc.Month),
		names: sheet.Names(),
		rows:  make(map[string]*sessionRow, sheet.Len()),
	}
	for _, name := range s.names {
		row := &sessionRow{}
		if m, ok := sheet.Member(name); ok {
			row.member = m
		}
		if r, ok := sheet.Roster(name); ok {
			row.roster = r
		}
		s.rows[name] = row
	}
	return s, nil
}

// Context returns the month being edited
func (s *Session) Context() ScheduleContext { return s.sc }

// Edit validates raw and, if it is acceptable, stores it in the row for
// the given 1-based day. A rejected value changes nothing.
func (s *Session) Edit(name string, day int, field Field, raw string) error {
	row, ok := s.rows[name]
	if !ok {
		return fmt.Errorf("edit %q: %w", name, ErrMemberNotFound)
	}
	if day < 1 || day > s.days {
		return &InvalidInputError{Raw: raw, Member: name, Field: field, Day: day,
			Reason: fmt.Sprintf("day %d is outside %d-%02d", day, s.sc.Year, s.sc.Month)}
	}

	var old, updated string
	switch {
	case field == FieldRole && s.sc.Kind == WorkSchedule:
		code, err := ValidateRoleCode(raw)
		if err != nil {
			annotate(err, name, field, day)
			return err
		}
		row.roster.Entries = growTo(row.roster.Entries, day)
		old = string(row.roster.Entries[day-1])
		row.roster.Entries[day-1] = code
		updated = string(code)
	case (field == FieldWorking || field == FieldAsking) && s.sc.Kind == Overtime:
		cell, err := ValidateCell(raw)
		if err != nil {
			annotate(err, name, field, day)
			return err
		}
		cells := &row.member.Working
		if field == FieldAsking {
			cells = &row.member.Asking
		}
		*cells = growTo(*cells, day)
		old = (*cells)[day-1].String()
		(*cells)[day-1] = cell
		updated = cell.String()
	default:
		return fmt.Errorf("edit %s: %w", field, ErrKindMismatch)
	}

	if old != updated {
		s.changes = append(s.changes, CellChange{Member: name, Day: day, Field: field, Old: old, New: updated})
	}
	row.state = StateEditing
	return nil
}

// Commit recomputes a row's totals. Edited rows move to StateRecomputed;
// other rows keep their state.
func (s *Session) Commit(name string) (RunningTotals, error) {
	row, ok := s.rows[name]
	if !ok {
		return RunningTotals{}, fmt.Errorf("commit %q: %w", name, ErrMemberNotFound)
	}
	if row.state == StateEditing || row.state == StateRecomputed {
		row.state = StateRecomputed
	}
	return row.member.Totals(), nil
}

// CommitAll recomputes every edited row
func (s *Session) CommitAll() {
	for _, name := range s.names {
		_, _ = s.Commit(name)
	}
}

// State returns a row's state; unknown names report StateClean
func (s *Session) State(name string) EditState {
	if row, ok := s.rows[name]; ok {
		return row.state
	}
	return StateClean
}

// Dirty returns the rows with unsaved edits in display order
func (s *Session) Dirty() []string {
	var out []string
	for _, name := range s.names {
		if st := s.rows[name].state; st == StateEditing || st == StateRecomputed {
			out = append(out, name)
		}
	}
	return out
}

// Member returns the session's copy of an overtime row
func (s *Session) Member(name string) (MemberLedger, bool) {
	row, ok := s.rows[name]
	if !ok || s.sc.Kind != Overtime {
		return MemberLedger{}, false
	}
	return row.member.Clone(), true
}

// Roster returns the session's copy of a work-schedule row
func (s *Session) Roster(name string) (RoleRoster, bool) {
	row, ok := s.rows[name]
	if !ok || s.sc.Kind != WorkSchedule {
		return RoleRoster{}, false
	}
	return row.roster.Clone(), true
}

// Changes returns every accepted edit that altered a value, oldest first
func (s *Session) Changes() []CellChange {
	return slices.Clone(s.changes)
}

// Save recomputes the dirty rows and applies the session's unsaved cell
// changes to the partition as it is when the write lock is held, so edits
// saved by others in the meantime are kept. A session with no changes
// writes nothing.
func (s *Session) Save(ctx context.Context, e *Engine) error {
	s.CommitAll()
	dirty := s.Dirty()

	if pending := s.changes[s.saved:]; len(pending) > 0 {
		if err := e.ApplyChanges(ctx, s.sc, pending); err != nil {
			return err
		}
		s.saved = len(s.changes)
	}

	for _, name := range dirty {
		s.rows[name].state = StateSaved
	}
	return nil
}

func annotate(err error, member string, field Field, day int) {
	if ie, ok := err.(*InvalidInputError); ok {
		ie.Member = member
		ie.Field = field
		ie.Day = day
	}
}

func growTo[T any](s []T, n int) []T {
	if len(s) >= n {
		return s
	}
	return append(s, make([]T, n-len(s))...)
}
