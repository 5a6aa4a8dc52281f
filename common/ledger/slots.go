package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lyzr/crewledger/common/partition"
	"github.com/lyzr/crewledger/common/rotation"
)

// SlotNames are the overtime coverage rows shown under each month
var SlotNames = []string{"Overtime 1", "Overtime 2", "Overtime 3", "Overtime 4"}

// Slots maps a slot name to its day entries; index 0 is day 1
type Slots map[string][]string

// SlotsKey returns the store name of a crew's slot partition
func SlotsKey(crew rotation.Crew, year int) string {
	return fmt.Sprintf("OT_Slots/OT_%s_%d", crew, year)
}

// NormalizeSlots upper-cases every entry and rejects unknown slots and rows
// longer than a month. Entries are free text.
func NormalizeSlots(in Slots) (Slots, error) {
	out := make(Slots, len(in))
	for name, entries := range in {
		if !slices.Contains(SlotNames, name) {
			return nil, &InvalidInputError{Raw: name, Reason: fmt.Sprintf("unknown overtime slot %q", name)}
		}
		if len(entries) > MaxDays {
			return nil, &InvalidInputError{Member: name, Reason: fmt.Sprintf("at most %d day entries allowed, got %d", MaxDays, len(entries))}
		}
		row := make([]string, len(entries))
		for i, v := range entries {
			row[i] = strings.ToUpper(v)
		}
		out[name] = row
	}
	return out, nil
}

// LoadSlots returns the saved slots for one month; a month never saved
// yields no slots
func (e *Engine) LoadSlots(ctx context.Context, crew rotation.Crew, year, month int) (Slots, error) {
	sc := ScheduleContext{Crew: crew, Month: month, Year: year, Kind: Overtime}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	key := SlotsKey(crew, year)

	doc, err := e.readSlots(ctx, key)
	if err != nil {
		return nil, err
	}
	return doc.month(month), nil
}

// SaveSlots merges the given slots into one month; slots not given keep
// their saved entries
func (e *Engine) SaveSlots(ctx context.Context, crew rotation.Crew, year, month int, slots Slots) error {
	sc := ScheduleContext{Crew: crew, Month: month, Year: year, Kind: Overtime}
	if err := sc.Validate(); err != nil {
		return err
	}
	slots, err := NormalizeSlots(slots)
	if err != nil {
		return err
	}
	key := SlotsKey(crew, year)

	release, err := e.locker.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	doc, err := e.readSlots(ctx, key)
	if err != nil {
		return err
	}
	doc.merge(month, slots)

	data, err := doc.encode()
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := e.store.Save(ctx, key, data); err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}

	e.log.WithPartition(key).Info("overtime slots saved", "month", month, "slots", len(slots))
	return nil
}

func (e *Engine) readSlots(ctx context.Context, key string) (*slotDoc, error) {
	obj, err := e.store.Load(ctx, key)
	if errors.Is(err, partition.ErrNotFound) {
		return &slotDoc{months: map[string]Slots{}}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	doc, err := decodeSlots(obj.Data)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return doc, nil
}

// slotDoc keeps month and slot keys in document order
type slotDoc struct {
	order  []string
	months map[string]Slots
	names  map[string][]string
}

func (d *slotDoc) month(m int) Slots {
	out := Slots{}
	for name, entries := range d.months[strconv.Itoa(m)] {
		out[name] = slices.Clone(entries)
	}
	return out
}

func (d *slotDoc) merge(m int, slots Slots) {
	k := strconv.Itoa(m)
	cur, ok := d.months[k]
	if !ok {
		cur = Slots{}
		d.months[k] = cur
		d.order = append(d.order, k)
	}
	if d.names == nil {
		d.names = map[string][]string{}
	}
	for _, name := range SlotNames {
		entries, ok := slots[name]
		if !ok {
			continue
		}
		if _, exists := cur[name]; !exists {
			d.names[k] = append(d.names[k], name)
		}
		cur[name] = entries
	}
}

func decodeSlots(data []byte) (*slotDoc, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	months := gjson.GetBytes(data, "month")
	if !months.IsObject() {
		return nil, fmt.Errorf(`missing "month" object`)
	}

	doc := &slotDoc{months: map[string]Slots{}, names: map[string][]string{}}
	var decodeErr error
	months.ForEach(func(k, v gjson.Result) bool {
		m, err := strconv.Atoi(k.String())
		if err != nil || m < 1 || m > 12 || !v.IsObject() {
			decodeErr = fmt.Errorf("invalid month %q", k.String())
			return false
		}
		key := strconv.Itoa(m)
		slots := Slots{}
		v.ForEach(func(name, entries gjson.Result) bool {
			row, err := asStrings(entries, name.String())
			if err != nil {
				decodeErr = fmt.Errorf("month %d: %w", m, err)
				return false
			}
			slots[name.String()] = row
			doc.names[key] = append(doc.names[key], name.String())
			return true
		})
		if decodeErr != nil {
			return false
		}
		doc.order = append(doc.order, key)
		doc.months[key] = slots
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return doc, nil
}

func (d *slotDoc) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"month":{`)
	for i, k := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `%q:{`, k)
		for j, name := range d.names[k] {
			if j > 0 {
				buf.WriteByte(',')
			}
			entries := d.months[k][name]
			if entries == nil {
				entries = []string{}
			}
			if err := writeRow(&buf, name, entries); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`}}`)

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("indent slots: %w", err)
	}
	return out.Bytes(), nil
}
