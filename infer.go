package xmlstore

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InferredType is the closed classification set a value is sorted into.
// The zero value (InferredEmpty) doubles as "no inference performed" for
// callers that check InferenceEnabled first.
type InferredType uint8

const (
	InferredEmpty InferredType = iota
	InferredWhitespace
	InferredString
	InferredBoolean
	InferredInt
	InferredFloat
	InferredUuid
	InferredDateTime
	InferredTime
	InferredDate
	InferredDuration
	InferredJson
)

// String returns the canonical lowercase tag stored in the inferred_type
// column.
func (t InferredType) String() string {
	switch t {
	case InferredEmpty:
		return "empty"
	case InferredWhitespace:
		return "whitespace"
	case InferredString:
		return "string"
	case InferredBoolean:
		return "boolean"
	case InferredInt:
		return "int"
	case InferredFloat:
		return "float"
	case InferredUuid:
		return "uuid"
	case InferredDateTime:
		return "datetime"
	case InferredTime:
		return "time"
	case InferredDate:
		return "date"
	case InferredDuration:
		return "duration"
	case InferredJson:
		return "json"
	default:
		return "string"
	}
}

// ParseInferredType is the inverse of String; it fails only on unknown
// literals.
func ParseInferredType(s string) (InferredType, error) {
	switch s {
	case "empty":
		return InferredEmpty, nil
	case "whitespace":
		return InferredWhitespace, nil
	case "string":
		return InferredString, nil
	case "boolean":
		return InferredBoolean, nil
	case "int":
		return InferredInt, nil
	case "float":
		return InferredFloat, nil
	case "uuid":
		return InferredUuid, nil
	case "datetime":
		return InferredDateTime, nil
	case "time":
		return InferredTime, nil
	case "date":
		return InferredDate, nil
	case "duration":
		return InferredDuration, nil
	case "json":
		return InferredJson, nil
	default:
		return 0, ErrStorage
	}
}

// inferType classifies a value string, first-match-wins. It is pure and
// side-effect-free.
func inferType(input string) InferredType {
	if input == "" {
		return InferredEmpty
	}

	if strings.TrimSpace(input) == "" {
		return InferredWhitespace
	}

	if len(input) == 4 && strings.EqualFold(input, "true") {
		return InferredBoolean
	}
	if len(input) == 5 && strings.EqualFold(input, "false") {
		return InferredBoolean
	}

	if _, err := strconv.ParseUint(input, 10, 64); err == nil {
		return InferredInt
	}

	if _, err := strconv.ParseFloat(input, 64); err == nil {
		return InferredFloat
	}

	if _, err := uuid.Parse(input); err == nil {
		return InferredUuid
	}

	if _, err := time.Parse(time.RFC3339, input); err == nil {
		return InferredDateTime
	}

	if _, err := time.Parse("15:04:05", input); err == nil {
		return InferredTime
	}
	if _, err := time.Parse("15:04:05.999999999", input); err == nil {
		return InferredTime
	}

	if _, err := time.Parse("2006-01-02", input); err == nil {
		return InferredDate
	}

	if isISODuration(input) {
		return InferredDuration
	}

	if json.Valid([]byte(input)) {
		return InferredJson
	}

	return InferredString
}

// isoDurationPattern matches ISO 8601 durations: P[n]Y[n]M[n]W[n]D[T[n]H[n]M[n]S],
// requiring at least one designator after P. No pack library offers a
// duration parser, so this is hand-rolled against the closed-form grammar.
var isoDurationPattern = regexp.MustCompile(
	`^P(?:\d+Y)?(?:\d+M)?(?:\d+W)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+(?:\.\d+)?S)?)?$`,
)

func isISODuration(input string) bool {
	if input == "" || input[0] != 'P' {
		return false
	}
	if input == "P" || input == "PT" {
		return false
	}
	return isoDurationPattern.MatchString(input)
}
