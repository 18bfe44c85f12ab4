package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["id", "mode"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "mode": {"type": "string", "enum": ["affiliate", "sponsor"]},
    "rating": {"type": "number", "minimum": 0, "maximum": 5}
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompileSchema(testSchema)

	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantValid bool
		wantField string
	}{
		{
			name:      "valid",
			doc:       map[string]interface{}{"id": "b1", "mode": "sponsor", "rating": 4.5},
			wantValid: true,
		},
		{
			name:      "missing required",
			doc:       map[string]interface{}{"mode": "sponsor"},
			wantField: "(root)",
		},
		{
			name:      "bad enum",
			doc:       map[string]interface{}{"id": "b1", "mode": "referral"},
			wantField: "mode",
		},
		{
			name:      "rating out of range",
			doc:       map[string]interface{}{"id": "b1", "mode": "affiliate", "rating": 7},
			wantField: "rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.True(t, result.HasErrors(tt.wantField), result.GetErrorMessages())
				assert.NotEmpty(t, result.GetErrorsForField(tt.wantField))
			}
		})
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": "nonsense"}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompileSchema(`not json`) })
}
