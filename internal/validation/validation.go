// Package validation checks a submission payload against a version's field
// schema. It is a pure function over its inputs: no side effects, and the
// violation list is deterministic and follows schema order.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"PMS-FORMS/internal/models"
)

type Code string

const (
	CodeRequired  Code = "REQUIRED_FIELD_MISSING"
	CodePattern   Code = "PATTERN_MISMATCH"
	CodeMaxLength Code = "MAX_LENGTH_EXCEEDED"
)

type FieldViolation struct {
	Key     string `json:"key"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Limit   int    `json:"limit,omitempty"`
}

// Resolve walks payload through each dot-separated segment of path. Any
// missing segment, or a node that is not a keyed object, resolves to nil.
// A nil result means "absent", which is not an error by itself.
func Resolve(payload map[string]any, path string) any {
	var value any = payload
	for _, segment := range strings.Split(path, ".") {
		node, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		value = node[segment]
	}
	return value
}

// Validate runs every field's rules against the payload and accumulates all
// violations; it never short-circuits on the first failure.
//
// A field's value counts as present once it resolves to a non-nil value
// whose string form is non-empty. Pattern matching is anchored at the start
// of the value but deliberately not at the end, matching the compositor's
// historical behavior.
func Validate(fields []models.FieldSchema, payload map[string]any) []FieldViolation {
	var violations []FieldViolation

	for _, f := range fields {
		value := Resolve(payload, f.Key)

		if f.Validation.Required && (value == nil || value == "") {
			violations = append(violations, FieldViolation{
				Key:     f.Key,
				Code:    CodeRequired,
				Message: fmt.Sprintf("Field '%s' is required but missing", f.Key),
			})
			continue
		}

		if value == nil {
			continue
		}
		text := fmt.Sprintf("%v", value)
		if text == "" {
			continue
		}

		if f.Validation.Regex != "" {
			re, err := regexp.Compile("^(?:" + f.Validation.Regex + ")")
			// An uncompilable pattern is rejected at schema-write time;
			// here it is skipped rather than failing the whole payload.
			if err == nil && !re.MatchString(text) {
				violations = append(violations, FieldViolation{
					Key:     f.Key,
					Code:    CodePattern,
					Message: fmt.Sprintf("Field '%s' does not match the required format", f.Key),
				})
			}
		}

		if f.Validation.MaxLen != nil && len(text) > *f.Validation.MaxLen {
			violations = append(violations, FieldViolation{
				Key:     f.Key,
				Code:    CodeMaxLength,
				Message: fmt.Sprintf("Field '%s' exceeds maximum length of %d", f.Key, *f.Validation.MaxLen),
				Limit:   *f.Validation.MaxLen,
			})
		}
	}

	return violations
}
