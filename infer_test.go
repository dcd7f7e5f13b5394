package xmlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  InferredType
	}{
		{"empty", "", InferredEmpty},
		{"whitespace", "   \t\n", InferredWhitespace},
		{"true", "true", InferredBoolean},
		{"false", "FALSE", InferredBoolean},
		{"int", "42", InferredInt},
		{"negative falls through to float", "-42", InferredFloat}, // ParseUint rejects the sign, ParseFloat accepts it
		{"float", "3.14", InferredFloat},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", InferredUuid},
		{"datetime", "2024-01-15T10:30:00Z", InferredDateTime},
		{"time", "10:30:00", InferredTime},
		{"date", "2024-01-15", InferredDate},
		{"duration", "P3DT4H5M6S", InferredDuration},
		{"json object", `{"a":1}`, InferredJson},
		{"json array", `[1,2,3]`, InferredJson},
		{"plain string", "hello world", InferredString},
		{"almost true", "truee", InferredString},
		{"malformed duration", "P", InferredString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferType(tt.input))
		})
	}
}

func TestInferredTypeStringRoundTrip(t *testing.T) {
	types := []InferredType{
		InferredEmpty, InferredWhitespace, InferredString, InferredBoolean,
		InferredInt, InferredFloat, InferredUuid, InferredDateTime,
		InferredTime, InferredDate, InferredDuration, InferredJson,
	}
	for _, ty := range types {
		got, err := ParseInferredType(ty.String())
		require.NoError(t, err)
		assert.Equal(t, ty, got)
	}
}

func TestParseInferredTypeUnknown(t *testing.T) {
	_, err := ParseInferredType("not-a-type")
	assert.Error(t, err)
}

func TestInferTypeOrderingIntBeforeUuid(t *testing.T) {
	// A plain digit string must classify as Int, never fall through to a
	// later branch, confirming first-match-wins ordering.
	assert.Equal(t, InferredInt, inferType("123456"))
}
