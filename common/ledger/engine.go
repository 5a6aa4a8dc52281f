package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/lyzr/crewledger/common/lock"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/partition"
	"github.com/lyzr/crewledger/common/rotation"
)

// Engine loads and persists year ledgers. Every write is a single
// read-modify-write of one partition under that partition's lock.
type Engine struct {
	store  partition.Store
	locker lock.Locker
	log    *logger.Logger
}

// NewEngine creates a new ledger engine
func NewEngine(store partition.Store, locker lock.Locker, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		locker: locker,
		log:    log,
	}
}

// Load returns the partition for key, creating and persisting it on first
// access. A new overtime partition is seeded from the previous year's
// December when that partition exists.
func (e *Engine) Load(ctx context.Context, key PartitionKey) (*YearLedger, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	y, found, err := e.read(ctx, key)
	if err != nil || found {
		return y, err
	}

	release, err := e.locker.Acquire(ctx, key.String())
	if err != nil {
		return nil, err
	}
	defer release()

	return e.loadOrCreate(ctx, key)
}

// LoadMonth returns one month of a partition
func (e *Engine) LoadMonth(ctx context.Context, sc ScheduleContext) (*Sheet, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	y, err := e.Load(ctx, sc.Key())
	if err != nil {
		return nil, err
	}
	return y.Month(sc.Month), nil
}

// Exists reports whether a partition has been written
func (e *Engine) Exists(ctx context.Context, key PartitionKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}
	_, err := e.store.Stat(ctx, key.String())
	if errors.Is(err, partition.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "load", Key: key.String(), Err: err}
	}
	return true, nil
}

// SaveMonth writes the listed crew members' cells for one overtime month.
// Members already on the sheet keep their starting balances; members new to
// the sheet are added to this and every later month where they are absent.
// Members on the sheet but not listed are left untouched. Starting balances
// of later months are then carried forward.
func (e *Engine) SaveMonth(ctx context.Context, sc ScheduleContext, members []MemberLedger) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if sc.Kind != Overtime {
		return fmt.Errorf("save month: %w", ErrKindMismatch)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if err := validateMember(m); err != nil {
			return err
		}
		if seen[m.Name] {
			return &InvalidInputError{Raw: m.Name, Member: m.Name, Reason: fmt.Sprintf("crew member %q listed twice", m.Name)}
		}
		seen[m.Name] = true
	}

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		sheet := y.Month(sc.Month)
		for _, m := range members {
			if !sheet.Has(m.Name) {
				addForward(y, sc.Month, m.Name)
			}
			row := sheet.hours[m.Name]
			row.Working = cloneCells(m.Working)
			row.Asking = cloneCells(m.Asking)
		}
		PropagateForward(y, sc.Month-1)
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("month saved", "month", sc.Month, "members", len(members))
	return nil
}

// SaveRoster writes the listed crew members' role codes for one
// work-schedule month, with the same membership rules as SaveMonth
func (e *Engine) SaveRoster(ctx context.Context, sc ScheduleContext, rosters []RoleRoster) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if sc.Kind != WorkSchedule {
		return fmt.Errorf("save roster: %w", ErrKindMismatch)
	}
	seen := make(map[string]bool, len(rosters))
	for _, r := range rosters {
		if err := validateRoster(r); err != nil {
			return err
		}
		if seen[r.Name] {
			return &InvalidInputError{Raw: r.Name, Member: r.Name, Reason: fmt.Sprintf("crew member %q listed twice", r.Name)}
		}
		seen[r.Name] = true
	}

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		sheet := y.Month(sc.Month)
		for _, r := range rosters {
			if !sheet.Has(r.Name) {
				addForward(y, sc.Month, r.Name)
			}
			sheet.roles[r.Name].Entries = append([]RoleCode(nil), r.Entries...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("roster saved", "month", sc.Month, "members", len(rosters))
	return nil
}

// ApplyChanges writes individual cell edits to one month, in order, against
// the partition as it is under the lock. Every member must still be on the
// sheet; nothing is written if one is missing. Starting balances of later
// months are then carried forward.
func (e *Engine) ApplyChanges(ctx context.Context, sc ScheduleContext, changes []CellChange) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	days := rotation.DaysInMonth(sc.Year, sc.Month)

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		sheet := y.Month(sc.Month)
		for _, c := range changes {
			if !sheet.Has(c.Member) {
				return fmt.Errorf("apply %s day %d for %q: %w", c.Field, c.Day, c.Member, ErrMemberNotFound)
			}
			if c.Day < 1 || c.Day > days {
				return &InvalidInputError{Raw: c.New, Member: c.Member, Field: c.Field, Day: c.Day,
					Reason: fmt.Sprintf("day %d is outside %d-%02d", c.Day, sc.Year, sc.Month)}
			}
			if err := applyChange(sheet, sc.Kind, c); err != nil {
				return err
			}
		}
		if sc.Kind == Overtime {
			PropagateForward(y, sc.Month-1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("cells saved", "month", sc.Month, "cells", len(changes))
	return nil
}

func applyChange(sheet *Sheet, kind ScheduleKind, c CellChange) error {
	switch {
	case c.Field == FieldRole && kind == WorkSchedule:
		code, err := ValidateRoleCode(c.New)
		if err != nil {
			annotate(err, c.Member, c.Field, c.Day)
			return err
		}
		row := sheet.roles[c.Member]
		row.Entries = growTo(row.Entries, c.Day)
		row.Entries[c.Day-1] = code
	case (c.Field == FieldWorking || c.Field == FieldAsking) && kind == Overtime:
		cell, err := ValidateCell(c.New)
		if err != nil {
			annotate(err, c.Member, c.Field, c.Day)
			return err
		}
		row := sheet.hours[c.Member]
		cells := &row.Working
		if c.Field == FieldAsking {
			cells = &row.Asking
		}
		*cells = growTo(*cells, c.Day)
		(*cells)[c.Day-1] = cell
	default:
		return fmt.Errorf("apply %s: %w", c.Field, ErrKindMismatch)
	}
	return nil
}

// RolloverYear seeds endingYear+1 from endingYear's December and persists
// it, replacing any existing partition for that year
func (e *Engine) RolloverYear(ctx context.Context, crew rotation.Crew, endingYear int, kind ScheduleKind) (*YearLedger, error) {
	prevKey := PartitionKey{Kind: kind, Crew: crew, Year: endingYear}
	nextKey := PartitionKey{Kind: kind, Crew: crew, Year: endingYear + 1}
	if err := prevKey.Validate(); err != nil {
		return nil, err
	}
	if err := nextKey.Validate(); err != nil {
		return nil, err
	}

	prev, found, err := e.read(ctx, prevKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("rollover %s: %w", prevKey, ErrPartitionNotFound)
	}

	release, err := e.locker.Acquire(ctx, nextKey.String())
	if err != nil {
		return nil, err
	}
	defer release()

	next := SeedYear(nextKey, prev.Month(12))
	if err := e.write(ctx, next); err != nil {
		return nil, err
	}

	e.log.WithPartition(nextKey.String()).Info("year rolled over",
		"from", prevKey.String(),
		"members", next.Month(1).Len())
	return next, nil
}

// mutate applies fn to a copy of the partition and writes the copy once.
// Nothing is persisted when fn fails.
func (e *Engine) mutate(ctx context.Context, key PartitionKey, fn func(y *YearLedger) error) (*YearLedger, error) {
	release, err := e.locker.Acquire(ctx, key.String())
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := e.loadOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := e.write(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// loadOrCreate must be called with the partition lock held
func (e *Engine) loadOrCreate(ctx context.Context, key PartitionKey) (*YearLedger, error) {
	y, found, err := e.read(ctx, key)
	if err != nil || found {
		return y, err
	}

	y, err = e.seed(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := e.write(ctx, y); err != nil {
		return nil, err
	}
	e.log.WithPartition(key.String()).Info("partition created", "members", y.Month(1).Len())
	return y, nil
}

func (e *Engine) seed(ctx context.Context, key PartitionKey) (*YearLedger, error) {
	if key.Kind != Overtime || key.Year <= 1 {
		return NewYearLedger(key), nil
	}
	prevKey := PartitionKey{Kind: key.Kind, Crew: key.Crew, Year: key.Year - 1}
	prev, found, err := e.read(ctx, prevKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewYearLedger(key), nil
	}
	return SeedYear(key, prev.Month(12)), nil
}

func (e *Engine) read(ctx context.Context, key PartitionKey) (*YearLedger, bool, error) {
	obj, err := e.store.Load(ctx, key.String())
	if errors.Is(err, partition.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &PersistenceError{Op: "load", Key: key.String(), Err: err}
	}
	y, err := Decode(key, obj.Data)
	if err != nil {
		e.log.WithPartition(key.String()).Error("partition decode failed", "error", err)
		return nil, false, &PersistenceError{Op: "decode", Key: key.String(), Err: err}
	}
	return y, true, nil
}

func (e *Engine) write(ctx context.Context, y *YearLedger) error {
	data, err := Encode(y)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: y.Key.String(), Err: err}
	}
	if err := e.store.Save(ctx, y.Key.String(), data); err != nil {
		return &PersistenceError{Op: "save", Key: y.Key.String(), Err: err}
	}
	return nil
}

// addForward appends name to month and every later month it is absent from
func addForward(y *YearLedger, month int, name string) {
	for m := month; m <= 12; m++ {
		if sheet := y.Month(m); !sheet.Has(name) {
			sheet.appendRow(name)
		}
	}
}

func cloneCells(cells []Cell) []Cell {
	return append([]Cell(nil), cells...)
}
