package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names an editable row of a crew member's grid
type Field string

const (
	FieldWorking Field = "working"
	FieldAsking  Field = "asking"
	FieldRole    Field = "role"
)

// RoleCode is a work-schedule assignment code; "" is a blank day
type RoleCode string

// AssignmentCodes maps assignment names to their grid codes
var AssignmentCodes = map[string]RoleCode{
	"Family Care":        "FC",
	"HOTT Team":          "HT",
	"FCC Task Force":     "FTF",
	"Steam Team":         "ST",
	"Baby Bonding":       "BB",
	"Graduation":         "G",
	"Relief":             "R",
	"School":             "SC",
	"Special Assignment": "SA",
	"Training":           "T",
	"Banked Holiday":     "BH",
	"Vacation":           "V",
	"Personal Choice":    "PC",
	"ERT Training":       "ERT",
	"Board Training":     "BT",
	"Meeting":            "M",
	"Jury Duty":          "JD",
	"Sick":               "SK",
	"Shift Swap":         "SW",
	"On Call":            "OC",
}

var knownCodes = func() map[RoleCode]bool {
	m := make(map[RoleCode]bool, len(AssignmentCodes))
	for _, code := range AssignmentCodes {
		m[code] = true
	}
	return m
}()

// RoleCodes returns the vocabulary sorted by code
func RoleCodes() []RoleCode {
	out := make([]RoleCode, 0, len(knownCodes))
	for code := range knownCodes {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MaxHours bounds a single cell and a starting balance
const MaxHours = 1<<31 - 1

// ValidateCell parses one raw hour entry. Blank is accepted as no entry;
// only plain ASCII digits that fit in 32 bits are accepted as hours.
func ValidateCell(raw string) (Cell, error) {
	if raw == "" {
		return Cell{}, nil
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return Cell{}, &InvalidInputError{Raw: raw}
		}
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return Cell{}, &InvalidInputError{Raw: raw}
	}
	return Hours(int(v)), nil
}

// ValidateRoleCode accepts blank or a known assignment code, case-insensitively
func ValidateRoleCode(raw string) (RoleCode, error) {
	if raw == "" {
		return "", nil
	}
	code := RoleCode(strings.ToUpper(raw))
	if !knownCodes[code] {
		return "", &InvalidInputError{
			Raw:    raw,
			Field:  FieldRole,
			Reason: fmt.Sprintf("unknown assignment code %q", raw),
		}
	}
	return code, nil
}

// ParseCells validates a row of raw entries; index 0 is day 1
func ParseCells(raw []string) ([]Cell, error) {
	if len(raw) > MaxDays {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("at most %d day entries allowed, got %d", MaxDays, len(raw))}
	}
	cells := make([]Cell, len(raw))
	for i, r := range raw {
		c, err := ValidateCell(r)
		if err != nil {
			err.(*InvalidInputError).Day = i + 1
			return nil, err
		}
		cells[i] = c
	}
	return cells, nil
}

// ParseRoles validates a row of raw role codes; index 0 is day 1
func ParseRoles(raw []string) ([]RoleCode, error) {
	if len(raw) > MaxDays {
		return nil, &InvalidInputError{Field: FieldRole, Reason: fmt.Sprintf("at most %d day entries allowed, got %d", MaxDays, len(raw))}
	}
	codes := make([]RoleCode, len(raw))
	for i, r := range raw {
		c, err := ValidateRoleCode(r)
		if err != nil {
			err.(*InvalidInputError).Day = i + 1
			return nil, err
		}
		codes[i] = c
	}
	return codes, nil
}

// CellStrings renders cells in their stored form
func CellStrings(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}

// RoleStrings renders role codes in their stored form
func RoleStrings(codes []RoleCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &InvalidInputError{Raw: name, Reason: "crew member name must not be blank"}
	}
	if name == PlaceholderName {
		return &InvalidInputError{Raw: name, Reason: fmt.Sprintf("%q is reserved", PlaceholderName)}
	}
	return nil
}

func validateMember(m MemberLedger) error {
	if err := validateName(m.Name); err != nil {
		return err
	}
	if m.StartingAsking < 0 || m.StartingWorking < 0 {
		return &InvalidInputError{Member: m.Name, Reason: "starting hours must not be negative"}
	}
	for field, cells := range map[Field][]Cell{FieldWorking: m.Working, FieldAsking: m.Asking} {
		if len(cells) > MaxDays {
			return &InvalidInputError{Member: m.Name, Field: field, Reason: fmt.Sprintf("at most %d day entries allowed, got %d", MaxDays, len(cells))}
		}
		for i, c := range cells {
			if c.Set && c.Value < 0 {
				return &InvalidInputError{Raw: c.String(), Member: m.Name, Field: field, Day: i + 1}
			}
		}
	}
	return nil
}

func validateRoster(r RoleRoster) error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if len(r.Entries) > MaxDays {
		return &InvalidInputError{Member: r.Name, Field: FieldRole, Reason: fmt.Sprintf("at most %d day entries allowed, got %d", MaxDays, len(r.Entries))}
	}
	for i, code := range r.Entries {
		if code != "" && !knownCodes[code] {
			return &InvalidInputError{Raw: string(code), Member: r.Name, Field: FieldRole, Day: i + 1, Reason: fmt.Sprintf("unknown assignment code %q", code)}
		}
	}
	return nil
}
