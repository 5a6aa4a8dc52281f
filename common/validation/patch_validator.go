// Package validation checks JSON Patch documents aimed at a month edit form
// before they are applied.
package validation

import (
	"fmt"
	"regexp"
)

// MaxOperations caps one patch; a full month of both hour rows for a large
// crew stays well under it
const MaxOperations = 4096

// cellPath addresses one day; rowPath addresses a whole day row
var (
	cellPath = regexp.MustCompile(`^/members/\d+/(working|asking|roles)/\d+$`)
	rowPath  = regexp.MustCompile(`^/members/\d+/(working|asking|roles)$`)
	namePath = regexp.MustCompile(`^/members/\d+/name$`)
)

// PatchValidator validates JSON Patch operations for month edits. Only cell
// and row replacement is allowed; membership changes have their own calls.
type PatchValidator struct{}

// NewPatchValidator creates a new patch validator
func NewPatchValidator() *PatchValidator {
	return &PatchValidator{}
}

// ValidateOperations validates all patch operations
func (v *PatchValidator) ValidateOperations(operations []map[string]interface{}) error {
	if len(operations) == 0 {
		return fmt.Errorf("patch has no operations")
	}
	if len(operations) > MaxOperations {
		return fmt.Errorf("patch has %d operations, at most %d allowed", len(operations), MaxOperations)
	}

	for i, op := range operations {
		if err := v.validateOperation(op, i); err != nil {
			return err
		}
	}
	return nil
}

// validateOperation validates a single operation
func (v *PatchValidator) validateOperation(op map[string]interface{}, index int) error {
	opType, ok := op["op"].(string)
	if !ok {
		return fmt.Errorf("operation %d: missing or invalid 'op' field", index)
	}

	path, ok := op["path"].(string)
	if !ok {
		return fmt.Errorf("operation %d: missing or invalid 'path' field", index)
	}

	value, hasValue := op["value"]

	switch opType {
	case "replace":
		if !hasValue {
			return fmt.Errorf("operation %d: 'value' required for replace operation", index)
		}
		switch {
		case cellPath.MatchString(path):
			if _, ok := value.(string); !ok {
				return fmt.Errorf("operation %d: day value must be a string, got %T", index, value)
			}
		case rowPath.MatchString(path):
			if err := validateRow(value, index); err != nil {
				return err
			}
		default:
			return fmt.Errorf("operation %d: replace is only allowed on day cells and rows, not %q", index, path)
		}

	case "test":
		if !hasValue {
			return fmt.Errorf("operation %d: 'value' required for test operation", index)
		}
		if !cellPath.MatchString(path) && !rowPath.MatchString(path) && !namePath.MatchString(path) {
			return fmt.Errorf("operation %d: test is only allowed on names, day cells and rows, not %q", index, path)
		}

	default:
		return fmt.Errorf("operation %d: unsupported operation type: %s", index, opType)
	}

	return nil
}

// validateRow checks a whole row value: an array of strings
func validateRow(value interface{}, opIndex int) error {
	row, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("operation %d: row value must be an array, got %T", opIndex, value)
	}
	for i, v := range row {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("operation %d: row entry %d must be a string, got %T", opIndex, i, v)
		}
	}
	return nil
}
