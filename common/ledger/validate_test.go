package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCell(t *testing.T) {
	tests := []struct {
		raw     string
		want    Cell
		wantErr bool
	}{
		{raw: "", want: Cell{}},
		{raw: "0", want: Hours(0)},
		{raw: "12", want: Hours(12)},
		{raw: "007", want: Hours(7)},
		{raw: "2147483647", want: Hours(2147483647)},
		{raw: "2147483648", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: " 5", wantErr: true},
		{raw: "+5", wantErr: true},
		{raw: "５", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ValidateCell(tt.raw)
			if tt.wantErr {
				var ie *InvalidInputError
				require.True(t, errors.As(err, &ie))
				assert.Equal(t, tt.raw, ie.Raw)
				assert.Equal(t, InvalidInputMessage, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRoleCode(t *testing.T) {
	code, err := ValidateRoleCode("fc")
	require.NoError(t, err)
	assert.Equal(t, RoleCode("FC"), code)

	code, err = ValidateRoleCode("")
	require.NoError(t, err)
	assert.Equal(t, RoleCode(""), code)

	_, err = ValidateRoleCode("XYZ")
	var ie *InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, FieldRole, ie.Field)
}

func TestRoleCodes(t *testing.T) {
	codes := RoleCodes()
	assert.Len(t, codes, len(AssignmentCodes))
	assert.Contains(t, codes, RoleCode("ERT"))
	assert.IsIncreasing(t, codes)
}

func TestParseCells(t *testing.T) {
	cells, err := ParseCells([]string{"8", "", "2"})
	require.NoError(t, err)
	assert.Equal(t, []Cell{Hours(8), {}, Hours(2)}, cells)

	_, err = ParseCells([]string{"1", "x"})
	var ie *InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Day)

	_, err = ParseCells(strings.Split(strings.Repeat("1,", MaxDays), ","))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 31")
}

func TestValidateMember(t *testing.T) {
	assert.NoError(t, validateMember(MemberLedger{Name: "Smith"}))
	assert.Error(t, validateMember(MemberLedger{Name: "  "}))
	assert.Error(t, validateMember(MemberLedger{Name: PlaceholderName}))
	assert.Error(t, validateMember(MemberLedger{Name: "Smith", StartingAsking: -1}))
	assert.Error(t, validateMember(MemberLedger{Name: "Smith", Working: []Cell{{Value: -3, Set: true}}}))
	assert.Error(t, validateMember(MemberLedger{Name: "Smith", Asking: make([]Cell, MaxDays+1)}))
}
