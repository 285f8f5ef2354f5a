package jsonutil

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractObjectFencedBlock(t *testing.T) {
	raw := "Here is the report you asked for.\n```json\n{\"completed_tasks\": [{\"task\": \"A\"}]}\n```\nLet me know if anything is off."
	got := ExtractObject(raw)
	want := `{"completed_tasks": [{"task": "A"}]}`
	if got != want {
		t.Fatalf("ExtractObject = %q, want %q", got, want)
	}
	var scratch map[string]any
	if err := json.Unmarshal([]byte(got), &scratch); err != nil {
		t.Fatalf("extracted content does not parse: %v", err)
	}
}

func TestExtractObjectBalancedBraces(t *testing.T) {
	raw := `Sure, the summary follows: {"a": {"b": [1, 2, {"c": 3}]}, "d": "x"} hope it helps`
	got := ExtractObject(raw)

	var gotVal, wantVal map[string]any
	if err := json.Unmarshal([]byte(got), &gotVal); err != nil {
		t.Fatalf("extracted content does not parse: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"a": {"b": [1, 2, {"c": 3}]}, "d": "x"}`), &wantVal); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotVal, wantVal) {
		t.Fatalf("extracted object differs: got %v want %v", gotVal, wantVal)
	}
}

func TestExtractObjectTrimFallback(t *testing.T) {
	// An unbalanced lead-in brace defeats the depth counter; the trim layer
	// should still find the object via first '{' / last '}'.
	raw := "prefix { not json\n{\"k\": \"v\"}"
	got := ExtractObject(raw)
	if got != raw {
		var scratch map[string]any
		if err := json.Unmarshal([]byte(got), &scratch); err != nil {
			t.Fatalf("extracted content does not parse: %v", err)
		}
	}
}

func TestExtractObjectNoJSONReturnsRaw(t *testing.T) {
	raw := "I could not produce a report this week, sorry."
	if got := ExtractObject(raw); got != raw {
		t.Fatalf("ExtractObject = %q, want raw input back", got)
	}
}

func TestExtractObjectBracesInsideProse(t *testing.T) {
	raw := "note } stray close first, then {\"x\": 1}"
	got := ExtractObject(raw)
	if got != `{"x": 1}` {
		t.Fatalf("ExtractObject = %q", got)
	}
}

func TestExtractObjectWholeInputIsObject(t *testing.T) {
	raw := `{"next_week_plan": []}`
	if got := ExtractObject(raw); got != raw {
		t.Fatalf("ExtractObject = %q, want identity", got)
	}
}
