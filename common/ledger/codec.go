package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// overtimeHours is the stored shape of one overtime row; field order matches
// the files written by earlier releases
type overtimeHours struct {
	StartingAskingHours  int      `json:"starting_asking_hours"`
	StartingWorkingHours int      `json:"starting_working_hours"`
	TotalAskingHours     int      `json:"total_asking_hours"`
	TotalWorkingHours    int      `json:"total_working_hours"`
	AskingHoursData      []string `json:"asking_hours_data"`
	WorkingHoursData     []string `json:"working_hours_data"`
}

type scheduleEntries struct {
	EntryData []string `json:"entry_data"`
}

type memberDoc[T any] struct {
	MonthlyHours T `json:"monthly_hours"`
}

// Encode serializes a year ledger to the partition file format. Crew members
// are written in sheet order and empty months get the placeholder row.
func Encode(y *YearLedger) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"month":{`)
	for m := 1; m <= 12; m++ {
		if m > 1 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":{`, m)
		if err := encodeSheet(&buf, y.Key.Kind, y.Month(m)); err != nil {
			return nil, fmt.Errorf("month %d: %w", m, err)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`}}`)

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("indent ledger: %w", err)
	}
	return out.Bytes(), nil
}

func encodeSheet(buf *bytes.Buffer, kind ScheduleKind, sheet *Sheet) error {
	if sheet.Empty() {
		return writeRow(buf, PlaceholderName, placeholderDoc(kind))
	}
	for i, name := range sheet.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		var doc any
		if kind == Overtime {
			m := sheet.hours[name]
			t := m.Totals()
			doc = memberDoc[overtimeHours]{MonthlyHours: overtimeHours{
				StartingAskingHours:  m.StartingAsking,
				StartingWorkingHours: m.StartingWorking,
				TotalAskingHours:     t.TotalAsking,
				TotalWorkingHours:    t.TotalWorking,
				AskingHoursData:      CellStrings(m.Asking),
				WorkingHoursData:     CellStrings(m.Working),
			}}
		} else {
			doc = memberDoc[scheduleEntries]{MonthlyHours: scheduleEntries{
				EntryData: RoleStrings(sheet.roles[name].Entries),
			}}
		}
		if err := writeRow(buf, name, doc); err != nil {
			return err
		}
	}
	return nil
}

func placeholderDoc(kind ScheduleKind) any {
	if kind == Overtime {
		return memberDoc[overtimeHours]{MonthlyHours: overtimeHours{
			AskingHoursData:  []string{},
			WorkingHoursData: []string{},
		}}
	}
	return memberDoc[scheduleEntries]{MonthlyHours: scheduleEntries{EntryData: []string{}}}
}

func writeRow(buf *bytes.Buffer, name string, doc any) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("row %q: %w", name, err)
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(value)
	return nil
}

// Decode parses a partition file. Rows are kept in document order, the
// placeholder row is dropped, every cell is validated and stored totals are
// ignored in favour of recomputed ones. Any malformed value fails the decode.
func Decode(key PartitionKey, data []byte) (*YearLedger, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	months := gjson.GetBytes(data, "month")
	if !months.IsObject() {
		return nil, fmt.Errorf(`missing "month" object`)
	}

	y := NewYearLedger(key)
	var decodeErr error
	months.ForEach(func(k, v gjson.Result) bool {
		m, err := strconv.Atoi(k.String())
		if err != nil || m < 1 || m > 12 {
			decodeErr = fmt.Errorf("invalid month key %q", k.String())
			return false
		}
		if !v.IsObject() {
			decodeErr = fmt.Errorf("month %d: expected object", m)
			return false
		}
		if err := decodeSheet(key.Kind, y.Month(m), v); err != nil {
			decodeErr = fmt.Errorf("month %d: %w", m, err)
			return false
		}
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return y, nil
}

func decodeSheet(kind ScheduleKind, sheet *Sheet, v gjson.Result) error {
	var err error
	v.ForEach(func(k, row gjson.Result) bool {
		name := k.String()
		if name == PlaceholderName {
			return true
		}
		if sheet.Has(name) {
			err = fmt.Errorf("duplicate crew member %q", name)
			return false
		}
		hours := row.Get("monthly_hours")
		if !hours.IsObject() {
			err = fmt.Errorf("%q: missing monthly_hours", name)
			return false
		}
		if kind == Overtime {
			err = decodeOvertimeRow(sheet, name, hours)
		} else {
			err = decodeScheduleRow(sheet, name, hours)
		}
		return err == nil
	})
	return err
}

func decodeOvertimeRow(sheet *Sheet, name string, hours gjson.Result) error {
	startAsk, err := nonNegativeInt(hours, "starting_asking_hours")
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	startWork, err := nonNegativeInt(hours, "starting_working_hours")
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	asking, err := stringArray(hours, "asking_hours_data")
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	working, err := stringArray(hours, "working_hours_data")
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}

	askCells, err := ParseCells(asking)
	if err != nil {
		return fmt.Errorf("%q asking_hours_data: %w", name, err)
	}
	workCells, err := ParseCells(working)
	if err != nil {
		return fmt.Errorf("%q working_hours_data: %w", name, err)
	}

	sheet.appendRow(name)
	m := sheet.hours[name]
	m.StartingAsking = startAsk
	m.StartingWorking = startWork
	m.Asking = askCells
	m.Working = workCells
	return nil
}

func decodeScheduleRow(sheet *Sheet, name string, hours gjson.Result) error {
	entries, err := stringArray(hours, "entry_data")
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	codes, err := ParseRoles(entries)
	if err != nil {
		return fmt.Errorf("%q entry_data: %w", name, err)
	}
	sheet.appendRow(name)
	sheet.roles[name].Entries = codes
	return nil
}

func nonNegativeInt(obj gjson.Result, field string) (int, error) {
	v := obj.Get(field)
	if !v.Exists() {
		return 0, nil
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%s: expected number", field)
	}
	n := v.Int()
	if n > MaxHours {
		return 0, fmt.Errorf("%s: %s exceeds %d", field, v.Raw, MaxHours)
	}
	if n < 0 || float64(n) != v.Float() {
		return 0, fmt.Errorf("%s: expected non-negative integer, got %s", field, v.Raw)
	}
	return int(n), nil
}

func stringArray(obj gjson.Result, field string) ([]string, error) {
	return asStrings(obj.Get(field), field)
}

func asStrings(v gjson.Result, field string) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%s: expected array", field)
	}
	items := v.Array()
	out := make([]string, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%s[%d]: expected string", field, i)
		}
		out[i] = item.String()
	}
	return out, nil
}
