package ledger

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lyzr/crewledger/common/rotation"
)

func TestEncode_EmptyLedgerWritesPlaceholders(t *testing.T) {
	data, err := Encode(NewYearLedger(keyA2024))
	require.NoError(t, err)

	for m := 1; m <= 12; m++ {
		row := gjson.GetBytes(data, "month."+strconv.Itoa(m)+`.\[placeholder\].monthly_hours`)
		require.True(t, row.Exists(), "month %d", m)
		assert.Equal(t, int64(0), row.Get("total_asking_hours").Int())
		assert.True(t, row.Get("working_hours_data").IsArray())
	}
	assert.Contains(t, string(data), "\n    \"month\": {")
}

func TestEncode_FieldOrderAndDerivedTotals(t *testing.T) {
	y := NewYearLedger(keyA2024)
	setMember(t, y.Month(1), MemberLedger{
		Name:            "Smith",
		StartingWorking: 5,
		StartingAsking:  5,
		Working:         []Cell{Hours(8), {}},
		Asking:          []Cell{Hours(2), Hours(0)},
	})

	data, err := Encode(y)
	require.NoError(t, err)

	hours := gjson.GetBytes(data, "month.1.Smith.monthly_hours")
	var keys []string
	hours.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{
		"starting_asking_hours",
		"starting_working_hours",
		"total_asking_hours",
		"total_working_hours",
		"asking_hours_data",
		"working_hours_data",
	}, keys)
	assert.Equal(t, int64(15), hours.Get("total_asking_hours").Int())
	assert.Equal(t, int64(13), hours.Get("total_working_hours").Int())
	assert.Equal(t, `["8",""]`, strings.Join(strings.Fields(hours.Get("working_hours_data").Raw), ""))
	assert.False(t, gjson.GetBytes(data, `month.1.\[placeholder\]`).Exists())
}

func TestCodec_RoundTripPreservesOrder(t *testing.T) {
	y := NewYearLedger(keyA2024)
	for _, name := range []string{"Zed", "Amy", "Moe"} {
		y.Month(3).appendRow(name)
	}
	setMember(t, y.Month(3), MemberLedger{Name: "Amy", StartingAsking: 4, Asking: []Cell{{}, Hours(3)}})

	data, err := Encode(y)
	require.NoError(t, err)
	got, err := Decode(keyA2024, data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zed", "Amy", "Moe"}, got.Month(3).Names())
	amy, _ := got.Month(3).Member("Amy")
	assert.Equal(t, []Cell{{}, Hours(3)}, amy.Asking)
	assert.Equal(t, 4, amy.StartingAsking)
	assert.True(t, got.Month(1).Empty())

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestCodec_WorkScheduleRoundTrip(t *testing.T) {
	key := PartitionKey{Kind: WorkSchedule, Crew: rotation.CrewB, Year: 2024}
	y := NewYearLedger(key)
	y.Month(7).appendRow("Smith")
	y.Month(7).roles["Smith"].Entries = []RoleCode{"V", "", "SK"}

	data, err := Encode(y)
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(data, "month.7.Smith.monthly_hours.entry_data").IsArray())

	got, err := Decode(key, data)
	require.NoError(t, err)
	r, ok := got.Month(7).Roster("Smith")
	require.True(t, ok)
	assert.Equal(t, []RoleCode{"V", "", "SK"}, r.Entries)
}

func TestDecode_IgnoresStoredTotals(t *testing.T) {
	doc := `{"month":{"1":{"Smith":{"monthly_hours":{
		"starting_asking_hours":5,"starting_working_hours":5,
		"total_asking_hours":999,"total_working_hours":999,
		"asking_hours_data":["2"],"working_hours_data":["8"]}}}}}`

	y, err := Decode(keyA2024, []byte(doc))
	require.NoError(t, err)
	m, ok := y.Month(1).Member("Smith")
	require.True(t, ok)
	assert.Equal(t, 15, m.Totals().TotalAsking)
	assert.Equal(t, 13, m.Totals().TotalWorking)
	assert.True(t, y.Month(2).Empty())
}

func TestDecode_StripsPlaceholderAlongsideRealRows(t *testing.T) {
	doc := `{"month":{"1":{
		"[placeholder]":{"monthly_hours":{"asking_hours_data":[],"working_hours_data":[]}},
		"Smith":{"monthly_hours":{"asking_hours_data":[],"working_hours_data":[]}}}}}`

	y, err := Decode(keyA2024, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith"}, y.Month(1).Names())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{"month":`, "invalid JSON"},
		{"no month", `{"months":{}}`, "month"},
		{"bad month key", `{"month":{"13":{}}}`, "invalid month key"},
		{"bad cell", `{"month":{"1":{"A":{"monthly_hours":{"working_hours_data":["x"]}}}}}`, InvalidInputMessage},
		{"negative cell", `{"month":{"1":{"A":{"monthly_hours":{"asking_hours_data":["-2"]}}}}}`, InvalidInputMessage},
		{"non-string cell", `{"month":{"1":{"A":{"monthly_hours":{"working_hours_data":[8]}}}}}`, "expected string"},
		{"negative start", `{"month":{"1":{"A":{"monthly_hours":{"starting_asking_hours":-1}}}}}`, "non-negative"},
		{"fractional start", `{"month":{"1":{"A":{"monthly_hours":{"starting_working_hours":1.5}}}}}`, "non-negative"},
		{"oversized start", `{"month":{"1":{"A":{"monthly_hours":{"starting_asking_hours":2147483648}}}}}`, "exceeds"},
		{"huge start", `{"month":{"1":{"A":{"monthly_hours":{"starting_working_hours":9223372036854775807}}}}}`, "exceeds"},
		{"duplicate", `{"month":{"1":{"A":{"monthly_hours":{}},"A":{"monthly_hours":{}}}}}`, "duplicate"},
		{"missing monthly_hours", `{"month":{"1":{"A":{}}}}`, "monthly_hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(keyA2024, []byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
