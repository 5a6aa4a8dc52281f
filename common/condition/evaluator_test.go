package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberVars(name string, working, asking, position int64) map[string]interface{} {
	return map[string]interface{}{
		VarMember: map[string]interface{}{
			"name":          name,
			"total_working": working,
			"total_asking":  asking,
			"position":      position,
		},
		VarMonth: int64(3),
	}
}

func TestEvaluate(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		expr string
		want bool
	}{
		{"member.total_asking < 40", true},
		{"member.total_working >= 12 && member.position <= 3", true},
		{`member.name.startsWith("Sm")`, true},
		{`member.name == "Jones"`, false},
		{"month == 3", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Evaluate(tt.expr, memberVars("Smith", 12, 30, 2))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, len(tests), e.CacheSize())

	e.ClearCache()
	assert.Equal(t, 0, e.CacheSize())
}

func TestEvaluate_Errors(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	_, err = e.Evaluate("member.total_asking <", memberVars("A", 0, 0, 1))
	assert.ErrorContains(t, err, "compilation")

	_, err = e.Evaluate("month + 1", memberVars("A", 0, 0, 1))
	assert.ErrorContains(t, err, "must return bool")

	_, err = e.Evaluate("member.total_asking", memberVars("A", 0, 0, 1))
	assert.ErrorContains(t, err, "did not return boolean")

	assert.Error(t, e.Compile("nope("))
	assert.NoError(t, e.Compile("member.position == 1"))
}
