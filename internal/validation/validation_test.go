package validation

import (
	"testing"

	"PMS-FORMS/internal/models"

	"github.com/google/go-cmp/cmp"
)

func requiredField(id, key string) models.FieldSchema {
	return models.FieldSchema{
		ID:         id,
		Key:        key,
		Type:       models.FieldText,
		Validation: models.FieldValidation{Required: true},
	}
}

func TestResolveNestedValue(t *testing.T) {
	payload := map[string]any{
		"client": map[string]any{
			"name": "Jane",
			"address": map[string]any{
				"city": "Bangkok",
			},
		},
		"age": 42,
	}

	tests := []struct {
		path string
		want any
	}{
		{"client.name", "Jane"},
		{"client.address.city", "Bangkok"},
		{"age", 42},
		{"client.missing", nil},
		{"missing.name", nil},
		{"client.name.deeper", nil}, // scalar node cannot be walked further
	}

	for _, tt := range tests {
		if got := Resolve(payload, tt.path); got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	fields := []models.FieldSchema{requiredField("f1", "client.name")}

	violations := Validate(fields, map[string]any{"client": map[string]any{}})
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(violations))
	}
	if violations[0].Key != "client.name" || violations[0].Code != CodeRequired {
		t.Fatalf("unexpected violation: %+v", violations[0])
	}

	violations = Validate(fields, map[string]any{"client": map[string]any{"name": "John"}})
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestValidateRequiredTreatsEmptyStringAsMissing(t *testing.T) {
	fields := []models.FieldSchema{requiredField("f1", "client.name")}
	violations := Validate(fields, map[string]any{"client": map[string]any{"name": ""}})
	if len(violations) != 1 || violations[0].Code != CodeRequired {
		t.Fatalf("expected one required violation, got %+v", violations)
	}
}

func TestValidateAccumulatesAllViolationsInSchemaOrder(t *testing.T) {
	fields := []models.FieldSchema{
		requiredField("f1", "client.name"),
		requiredField("f2", "client.email"),
	}

	violations := Validate(fields, map[string]any{})
	if len(violations) != 2 {
		t.Fatalf("expected two violations, got %d", len(violations))
	}
	if violations[0].Key != "client.name" || violations[1].Key != "client.email" {
		t.Fatalf("violations out of schema order: %+v", violations)
	}
}

func TestValidateRegexAnchoredAtStartOnly(t *testing.T) {
	fields := []models.FieldSchema{{
		ID:         "f1",
		Key:        "code",
		Type:       models.FieldText,
		Validation: models.FieldValidation{Regex: "[A-Z]{2}"},
	}}

	// A match at position 0 is enough; the pattern is not anchored to the end.
	if v := Validate(fields, map[string]any{"code": "AB123"}); len(v) != 0 {
		t.Fatalf("expected prefix match to pass, got %+v", v)
	}

	v := Validate(fields, map[string]any{"code": "1AB"})
	if len(v) != 1 || v[0].Code != CodePattern {
		t.Fatalf("expected one pattern violation, got %+v", v)
	}
}

func TestValidateMaxLength(t *testing.T) {
	limit := 5
	fields := []models.FieldSchema{{
		ID:         "f1",
		Key:        "nickname",
		Type:       models.FieldText,
		Validation: models.FieldValidation{MaxLen: &limit},
	}}

	if v := Validate(fields, map[string]any{"nickname": "12345"}); len(v) != 0 {
		t.Fatalf("expected value at the limit to pass, got %+v", v)
	}

	v := Validate(fields, map[string]any{"nickname": "123456"})
	if len(v) != 1 || v[0].Code != CodeMaxLength || v[0].Limit != 5 {
		t.Fatalf("expected one max-length violation with limit 5, got %+v", v)
	}
}

func TestValidateSkipsOptionalRulesWhenAbsentOrEmpty(t *testing.T) {
	limit := 3
	fields := []models.FieldSchema{{
		ID:         "f1",
		Key:        "ref",
		Type:       models.FieldText,
		Validation: models.FieldValidation{Regex: "[0-9]+", MaxLen: &limit},
	}}

	if v := Validate(fields, map[string]any{}); len(v) != 0 {
		t.Fatalf("absent value must not trigger optional rules, got %+v", v)
	}
	if v := Validate(fields, map[string]any{"ref": ""}); len(v) != 0 {
		t.Fatalf("empty value must not trigger optional rules, got %+v", v)
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	limit := 2
	fields := []models.FieldSchema{
		requiredField("f1", "a"),
		{ID: "f2", Key: "b", Type: models.FieldText, Validation: models.FieldValidation{Regex: "x", MaxLen: &limit}},
		requiredField("f3", "c.d"),
	}
	payload := map[string]any{"b": "yyy"}

	first := Validate(fields, payload)
	second := Validate(fields, payload)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("validation output not stable (-first +second):\n%s", diff)
	}
	if len(first) != 4 {
		t.Fatalf("expected 4 violations (2 required, pattern, max length), got %d: %+v", len(first), first)
	}
}
