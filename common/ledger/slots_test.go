package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lyzr/crewledger/common/rotation"
)

func TestSlots_SaveMergesAndLoads(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	empty, err := e.LoadSlots(ctx, rotation.CrewA, 2024, 6)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, e.SaveSlots(ctx, rotation.CrewA, 2024, 6, Slots{
		"Overtime 1": {"smith", "", "12"},
		"Overtime 2": {"jones"},
	}))
	require.NoError(t, e.SaveSlots(ctx, rotation.CrewA, 2024, 6, Slots{
		"Overtime 2": {"lee"},
	}))
	require.NoError(t, e.SaveSlots(ctx, rotation.CrewA, 2024, 7, Slots{
		"Overtime 4": {"x"},
	}))

	june, err := e.LoadSlots(ctx, rotation.CrewA, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, Slots{
		"Overtime 1": {"SMITH", "", "12"},
		"Overtime 2": {"LEE"},
	}, june)

	obj, err := store.Load(ctx, "OT_Slots/OT_A_2024")
	require.NoError(t, err)
	var months []string
	gjson.GetBytes(obj.Data, "month").ForEach(func(k, _ gjson.Result) bool {
		months = append(months, k.String())
		return true
	})
	assert.Equal(t, []string{"6", "7"}, months)
}

func TestSlots_Validation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var ie *InvalidInputError
	assert.ErrorAs(t, e.SaveSlots(ctx, rotation.CrewA, 2024, 1, Slots{"Overtime 5": {"A"}}), &ie)
	assert.ErrorAs(t, e.SaveSlots(ctx, rotation.CrewA, 2024, 1, Slots{"Overtime 1": make([]string, MaxDays+1)}), &ie)
	assert.Error(t, e.SaveSlots(ctx, rotation.CrewA, 2024, 13, Slots{}))
}

func TestNormalizeSlots_FreeTextUpperCased(t *testing.T) {
	out, err := NormalizeSlots(Slots{"Overtime 3": {"smith / jones", "8", "v", ""}})
	require.NoError(t, err)
	assert.Equal(t, Slots{"Overtime 3": {"SMITH / JONES", "8", "V", ""}}, out)
}

func TestSlots_ReadsLegacyFile(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, SlotsKey(rotation.CrewB, 2023), []byte(`{
    "month": {
        "6": {
            "Overtime 1": ["SMITH", ""],
            "Overtime 3": []
        }
    }
}`)))

	june, err := e.LoadSlots(ctx, rotation.CrewB, 2023, 6)
	require.NoError(t, err)
	assert.Equal(t, Slots{"Overtime 1": {"SMITH", ""}, "Overtime 3": {}}, june)
}
