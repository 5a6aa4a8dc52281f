package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ops(t *testing.T, raw string) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestValidateOperations(t *testing.T) {
	v := NewPatchValidator()

	tests := []struct {
		name    string
		patch   string
		wantErr string
	}{
		{"cell replace", `[{"op":"replace","path":"/members/0/working/4","value":"8"}]`, ""},
		{"row replace", `[{"op":"replace","path":"/members/1/roles","value":["R","","FC"]}]`, ""},
		{"guarded by test", `[{"op":"test","path":"/members/0/name","value":"Smith"},{"op":"replace","path":"/members/0/asking/0","value":""}]`, ""},
		{"empty", `[]`, "no operations"},
		{"missing op", `[{"path":"/members/0/working/0","value":"1"}]`, "'op'"},
		{"missing path", `[{"op":"replace","value":"1"}]`, "'path'"},
		{"missing value", `[{"op":"replace","path":"/members/0/working/0"}]`, "'value' required"},
		{"numeric cell", `[{"op":"replace","path":"/members/0/working/0","value":8}]`, "must be a string"},
		{"row of numbers", `[{"op":"replace","path":"/members/0/working","value":[1]}]`, "row entry 0"},
		{"rename through patch", `[{"op":"replace","path":"/members/0/name","value":"Jones"}]`, "only allowed on day cells"},
		{"add member", `[{"op":"add","path":"/members/-","value":{"name":"X"}}]`, "unsupported operation type: add"},
		{"remove", `[{"op":"remove","path":"/members/0"}]`, "unsupported operation type: remove"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateOperations(ops(t, tt.patch))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
