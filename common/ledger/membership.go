package ledger

import (
	"context"
	"fmt"

	"github.com/lyzr/crewledger/common/rotation"
)

// Membership changes apply to the selected month and every later month of
// the partition. Earlier months keep their history.

// AddMember adds name to the end of the selected month and of every later
// month that does not already list them
func (e *Engine) AddMember(ctx context.Context, sc ScheduleContext, name string) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		if y.Month(sc.Month).Has(name) {
			return fmt.Errorf("add %q: %w", name, ErrMemberExists)
		}
		addForward(y, sc.Month, name)
		PropagateForward(y, sc.Month-1)
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("crew member added", "member", name, "from_month", sc.Month)
	return nil
}

// RemoveMember drops name from the selected month onward
func (e *Engine) RemoveMember(ctx context.Context, sc ScheduleContext, name string) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		if !y.Month(sc.Month).Has(name) {
			return fmt.Errorf("remove %q: %w", name, ErrMemberNotFound)
		}
		for m := sc.Month; m <= 12; m++ {
			y.Month(m).removeRow(name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("crew member removed", "member", name, "from_month", sc.Month)
	return nil
}

// RenameMember renames oldName to newName from the selected month onward,
// keeping cells, balances and position. Months before the selected one keep
// the old name, so a later month's balance no longer carries from them.
func (e *Engine) RenameMember(ctx context.Context, sc ScheduleContext, oldName, newName string) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if err := validateName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		if !y.Month(sc.Month).Has(oldName) {
			return fmt.Errorf("rename %q: %w", oldName, ErrMemberNotFound)
		}
		for m := sc.Month; m <= 12; m++ {
			if y.Month(m).Has(newName) {
				return fmt.Errorf("rename %q to %q: %w", oldName, newName, ErrMemberExists)
			}
		}
		for m := sc.Month; m <= 12; m++ {
			y.Month(m).renameRow(oldName, newName)
		}
		PropagateForward(y, sc.Month-1)
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("crew member renamed",
		"member", oldName,
		"new_name", newName,
		"from_month", sc.Month)
	return nil
}

// MoveMember moves name to a 0-based position from the selected month
// onward. Positions past the end move the member to the end.
func (e *Engine) MoveMember(ctx context.Context, sc ScheduleContext, name string, position int) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if position < 0 {
		return &InvalidInputError{Member: name, Reason: "position must not be negative"}
	}

	_, err := e.mutate(ctx, sc.Key(), func(y *YearLedger) error {
		if !y.Month(sc.Month).Has(name) {
			return fmt.Errorf("move %q: %w", name, ErrMemberNotFound)
		}
		for m := sc.Month; m <= 12; m++ {
			y.Month(m).moveRow(name, position)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(sc.Key().String()).Info("crew member moved", "member", name, "position", position, "from_month", sc.Month)
	return nil
}

// AdjustStartingHours sets a crew member's January starting balances in an
// overtime partition and carries the change through December
func (e *Engine) AdjustStartingHours(ctx context.Context, crew rotation.Crew, year int, name string, working, asking int) error {
	key := PartitionKey{Kind: Overtime, Crew: crew, Year: year}
	if err := key.Validate(); err != nil {
		return err
	}
	if working < 0 || asking < 0 {
		return &InvalidInputError{Member: name, Reason: "starting hours must not be negative"}
	}
	if working > MaxHours || asking > MaxHours {
		return &InvalidInputError{Member: name, Reason: fmt.Sprintf("starting hours must not exceed %d", MaxHours)}
	}

	_, err := e.mutate(ctx, key, func(y *YearLedger) error {
		m, ok := y.Month(1).hours[name]
		if !ok {
			return fmt.Errorf("adjust starting hours %q: %w", name, ErrMemberNotFound)
		}
		m.StartingWorking = working
		m.StartingAsking = asking
		PropagateForward(y, 1)
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithPartition(key.String()).Info("starting hours adjusted", "member", name, "working", working, "asking", asking)
	return nil
}
