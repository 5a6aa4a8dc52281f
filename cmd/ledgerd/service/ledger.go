package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lyzr/crewledger/common/condition"
	"github.com/lyzr/crewledger/common/events"
	"github.com/lyzr/crewledger/common/ledger"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/rotation"
	"github.com/lyzr/crewledger/common/telemetry"
)

// FilterError reports a ranking filter that did not compile or evaluate
type FilterError struct {
	Expr string
	Err  error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %v", e.Expr, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// LedgerService runs ledger reads and edits on behalf of an actor and
// announces every write on the event bus
type LedgerService struct {
	engine    *ledger.Engine
	patcher   *PatchService
	evaluator *condition.Evaluator
	bus       events.Bus
	telemetry *telemetry.Telemetry
	log       *logger.Logger
}

// NewLedgerService creates a new ledger service. bus and tel may be nil.
func NewLedgerService(
	engine *ledger.Engine,
	patcher *PatchService,
	evaluator *condition.Evaluator,
	bus events.Bus,
	tel *telemetry.Telemetry,
	log *logger.Logger,
) *LedgerService {
	return &LedgerService{
		engine:    engine,
		patcher:   patcher,
		evaluator: evaluator,
		bus:       bus,
		telemetry: tel,
		log:       log,
	}
}

// Month returns a month with its running totals
func (s *LedgerService) Month(ctx context.Context, sc ledger.ScheduleContext) (*MonthView, error) {
	sheet, err := s.engine.LoadMonth(ctx, sc)
	if err != nil {
		return nil, err
	}
	return newMonthView(sc, sheet), nil
}

// EditForm returns the month as raw strings padded to the month's length
func (s *LedgerService) EditForm(ctx context.Context, sc ledger.ScheduleContext) (*MonthEdit, error) {
	sheet, err := s.engine.LoadMonth(ctx, sc)
	if err != nil {
		return nil, err
	}
	return newMonthEdit(sc, sheet), nil
}

// Save applies raw entries to a month through an edit session and persists
// the rows that changed
func (s *LedgerService) Save(ctx context.Context, sc ledger.ScheduleContext, edit MonthEdit, actor string) (*SaveResult, error) {
	return s.save(ctx, sc, edit, actor, "edit")
}

// Patch applies an RFC 6902 patch to the month's edit form and saves the
// result the same way Save does
func (s *LedgerService) Patch(ctx context.Context, sc ledger.ScheduleContext, patchJSON []byte, actor string) (*SaveResult, error) {
	sheet, err := s.engine.LoadMonth(ctx, sc)
	if err != nil {
		return nil, err
	}
	base, err := json.Marshal(newMonthEdit(sc, sheet))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edit form: %w", err)
	}

	patched, err := s.patcher.Apply(base, patchJSON)
	if err != nil {
		return nil, err
	}

	var edit MonthEdit
	if err := json.Unmarshal(patched, &edit); err != nil {
		return nil, &PatchError{Err: fmt.Errorf("patched document is not a month: %w", err)}
	}
	return s.save(ctx, sc, edit, actor, "patch")
}

func (s *LedgerService) save(ctx context.Context, sc ledger.ScheduleContext, edit MonthEdit, actor, op string) (*SaveResult, error) {
	if s.telemetry != nil {
		defer s.telemetry.RecordDuration("ledger."+op, time.Now())
	}

	sheet, err := s.engine.LoadMonth(ctx, sc)
	if err != nil {
		return nil, err
	}
	session, err := ledger.NewSession(sc, sheet)
	if err != nil {
		return nil, err
	}

	for _, row := range edit.Members {
		if err := editRow(session, row); err != nil {
			return nil, err
		}
	}
	if err := session.Save(ctx, s.engine); err != nil {
		return nil, err
	}

	changes := s.audit(sc, session.Changes(), actor)
	if len(changes) > 0 {
		s.publish(ctx, sc.Key().String(), sc.Month, actor, op)
	}

	view, err := s.Month(ctx, sc)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Changes: changes, Month: view}, nil
}

// editRow feeds the entries that differ from the session's copy into it
func editRow(session *ledger.Session, row RowEdit) error {
	sc := session.Context()

	if sc.Kind == ledger.WorkSchedule {
		if row.Working != nil || row.Asking != nil {
			return fmt.Errorf("edit %q: hours on a work schedule: %w", row.Name, ledger.ErrKindMismatch)
		}
		current, ok := session.Roster(row.Name)
		if !ok {
			return fmt.Errorf("edit %q: %w", row.Name, ledger.ErrMemberNotFound)
		}
		return editCells(session, row.Name, ledger.FieldRole, ledger.RoleStrings(current.Entries), row.Roles)
	}

	if row.Roles != nil {
		return fmt.Errorf("edit %q: roles on an overtime sheet: %w", row.Name, ledger.ErrKindMismatch)
	}
	current, ok := session.Member(row.Name)
	if !ok {
		return fmt.Errorf("edit %q: %w", row.Name, ledger.ErrMemberNotFound)
	}
	if err := editCells(session, row.Name, ledger.FieldWorking, ledger.CellStrings(current.Working), row.Working); err != nil {
		return err
	}
	return editCells(session, row.Name, ledger.FieldAsking, ledger.CellStrings(current.Asking), row.Asking)
}

func editCells(session *ledger.Session, name string, field ledger.Field, current, raw []string) error {
	for i, v := range raw {
		old := ""
		if i < len(current) {
			old = current[i]
		}
		if v == old {
			continue
		}
		if err := session.Edit(name, i+1, field, v); err != nil {
			return err
		}
	}
	return nil
}

// audit logs every saved change with its own audit id
func (s *LedgerService) audit(sc ledger.ScheduleContext, changes []ledger.CellChange, actor string) []AuditEntry {
	log := s.log.WithPartition(sc.Key().String())
	out := make([]AuditEntry, 0, len(changes))
	for _, c := range changes {
		entry := AuditEntry{
			AuditID: uuid.NewString(),
			Member:  c.Member,
			Day:     c.Day,
			Field:   c.Field,
			Old:     c.Old,
			New:     c.New,
		}
		log.Info("ledger cell changed",
			"audit_id", entry.AuditID,
			"actor", actor,
			"month", sc.Month,
			"member", c.Member,
			"day", c.Day,
			"field", c.Field,
			"old", c.Old,
			"new", c.New)
		out = append(out, entry)
	}
	return out
}

// Ranking orders an overtime month by the chosen total. A non-empty filter
// is a CEL expression over member and month; rows keep their unfiltered
// positions.
func (s *LedgerService) Ranking(ctx context.Context, sc ledger.ScheduleContext, by ledger.RankBy, filter string) ([]StandingView, error) {
	if sc.Kind != ledger.Overtime {
		return nil, fmt.Errorf("ranking: %w", ledger.ErrKindMismatch)
	}
	if filter != "" {
		if err := s.evaluator.Compile(filter); err != nil {
			return nil, &FilterError{Expr: filter, Err: err}
		}
	}

	sheet, err := s.engine.LoadMonth(ctx, sc)
	if err != nil {
		return nil, err
	}
	standings := ledger.Rank(sheet, by)
	if filter == "" {
		return newStandingViews(standings), nil
	}

	kept := make([]ledger.Standing, 0, len(standings))
	for _, st := range standings {
		ok, err := s.evaluator.Evaluate(filter, map[string]interface{}{
			condition.VarMember: map[string]interface{}{
				"name":          st.Name,
				"total_working": st.TotalWorking,
				"total_asking":  st.TotalAsking,
				"position":      st.Position,
			},
			condition.VarMonth: sc.Month,
		})
		if err != nil {
			return nil, &FilterError{Expr: filter, Err: err}
		}
		if ok {
			kept = append(kept, st)
		}
	}
	return newStandingViews(kept), nil
}

// Rollover seeds the year after endingYear and returns its January
func (s *LedgerService) Rollover(ctx context.Context, crew rotation.Crew, endingYear int, kind ledger.ScheduleKind, actor string) (*MonthView, error) {
	if s.telemetry != nil {
		defer s.telemetry.RecordDuration("ledger.rollover", time.Now())
	}

	y, err := s.engine.RolloverYear(ctx, crew, endingYear, kind)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, y.Key.String(), 0, actor, "rollover")

	sc := ledger.ScheduleContext{Crew: crew, Month: 1, Year: y.Key.Year, Kind: kind}
	return newMonthView(sc, y.Month(1)), nil
}

// AddMember adds a crew member from the selected month onward
func (s *LedgerService) AddMember(ctx context.Context, sc ledger.ScheduleContext, name, actor string) error {
	if err := s.engine.AddMember(ctx, sc, name); err != nil {
		return err
	}
	s.publish(ctx, sc.Key().String(), sc.Month, actor, "add_member")
	return nil
}

// RemoveMember removes a crew member from the selected month onward
func (s *LedgerService) RemoveMember(ctx context.Context, sc ledger.ScheduleContext, name, actor string) error {
	if err := s.engine.RemoveMember(ctx, sc, name); err != nil {
		return err
	}
	s.publish(ctx, sc.Key().String(), sc.Month, actor, "remove_member")
	return nil
}

// RenameMember renames a crew member from the selected month onward
func (s *LedgerService) RenameMember(ctx context.Context, sc ledger.ScheduleContext, oldName, newName, actor string) error {
	if err := s.engine.RenameMember(ctx, sc, oldName, newName); err != nil {
		return err
	}
	s.publish(ctx, sc.Key().String(), sc.Month, actor, "rename_member")
	return nil
}

// MoveMember reorders a crew member from the selected month onward
func (s *LedgerService) MoveMember(ctx context.Context, sc ledger.ScheduleContext, name string, position int, actor string) error {
	if err := s.engine.MoveMember(ctx, sc, name, position); err != nil {
		return err
	}
	s.publish(ctx, sc.Key().String(), sc.Month, actor, "move_member")
	return nil
}

// AdjustStartingHours sets January starting balances in an overtime partition
func (s *LedgerService) AdjustStartingHours(ctx context.Context, crew rotation.Crew, year int, name string, working, asking int, actor string) error {
	if err := s.engine.AdjustStartingHours(ctx, crew, year, name, working, asking); err != nil {
		return err
	}
	key := ledger.PartitionKey{Kind: ledger.Overtime, Crew: crew, Year: year}
	s.publish(ctx, key.String(), 1, actor, "starting_hours")
	return nil
}

// Slots returns one month of overtime slots
func (s *LedgerService) Slots(ctx context.Context, crew rotation.Crew, year, month int) (ledger.Slots, error) {
	return s.engine.LoadSlots(ctx, crew, year, month)
}

// SaveSlots merges slots into one month and returns the month as saved
func (s *LedgerService) SaveSlots(ctx context.Context, crew rotation.Crew, year, month int, slots ledger.Slots, actor string) (ledger.Slots, error) {
	if err := s.engine.SaveSlots(ctx, crew, year, month, slots); err != nil {
		return nil, err
	}
	s.publish(ctx, ledger.SlotsKey(crew, year), month, actor, "slots")
	return s.engine.LoadSlots(ctx, crew, year, month)
}

// publish announces a write. The write has already succeeded, so a bus
// failure is logged and not returned.
func (s *LedgerService) publish(ctx context.Context, partition string, month int, actor, op string) {
	if s.bus == nil {
		return
	}
	ev := events.NewSavedEvent(partition, month, actor, op)
	data, err := ev.Encode()
	if err != nil {
		s.log.Error("failed to encode ledger event", "partition", partition, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, events.TopicLedgerSaved, partition, data); err != nil {
		s.log.Warn("failed to publish ledger event", "partition", partition, "operation", op, "error", err)
		return
	}
	if s.telemetry != nil {
		s.telemetry.RecordEvent(events.TopicLedgerSaved, map[string]any{"partition": partition, "operation": op})
	}
}
