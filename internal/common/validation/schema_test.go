package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Compile(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"market"},
		"properties": map[string]interface{}{
			"market": map[string]interface{}{"type": "string", "minLength": 1},
			"count":  map[string]interface{}{"type": "integer", "minimum": 0},
		},
	})
	require.NoError(t, err)
	return s
}

// ==========================
// Validation
// ==========================

func TestSchema_ValidateJSON(t *testing.T) {
	s := createTestSchema(t)

	tests := []struct {
		name           string
		doc            string
		wantValid      bool
		validateErrors func(t *testing.T, errs []ValidationError)
	}{
		{
			name:      "valid",
			doc:       `{"market":"Austin, TX","count":3}`,
			wantValid: true,
		},
		{
			name:      "missing market",
			doc:       `{"count":3}`,
			wantValid: false,
			validateErrors: func(t *testing.T, errs []ValidationError) {
				require.Len(t, errs, 1)
				assert.Equal(t, "REQUIRED", errs[0].Code)
				assert.Contains(t, errs[0].Message, "market")
			},
		},
		{
			name:      "negative count",
			doc:       `{"market":"Austin","count":-1}`,
			wantValid: false,
			validateErrors: func(t *testing.T, errs []ValidationError) {
				require.Len(t, errs, 1)
				assert.Equal(t, "count", errs[0].Field)
			},
		},
		{
			name:      "wrong type",
			doc:       `{"market":42}`,
			wantValid: false,
			validateErrors: func(t *testing.T, errs []ValidationError) {
				require.NotEmpty(t, errs)
				assert.Equal(t, "INVALID_TYPE", errs[0].Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.ValidateJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.validateErrors != nil {
				tt.validateErrors(t, result.Errors)
			}
		})
	}
}

func TestSchema_ValidateJSON_Malformed(t *testing.T) {
	_, err := createTestSchema(t).ValidateJSON([]byte(`{"market":`))
	assert.Error(t, err)
}

func TestSchema_ValidateInput(t *testing.T) {
	s := createTestSchema(t)

	result, err := s.ValidateInput(map[string]interface{}{"market": "Denver, CO"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = s.ValidateInput(map[string]interface{}{"market": ""})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 12})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustCompile(map[string]interface{}{"type": 12})
	})
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "", FormatErrors(nil))
	assert.Equal(t, "market: is required; count: too small", FormatErrors([]ValidationError{
		{Field: "market", Message: "is required"},
		{Field: "count", Message: "too small"},
	}))
}
