package report

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValidationError reports why a candidate JSON object does not fit the
// WeekData schema.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "report: invalid week data: " + e.Reason
}

var validPriorities = map[string]bool{"P0": true, "P1": true, "P2": true}

// Decode parses raw JSON into a fully-typed WeekData. It either succeeds and
// returns a normalized report or fails with a *ValidationError; partial
// objects do not pass through silently. Missing fields default to empty,
// unknown fields and mis-typed values are rejected.
func Decode(raw []byte) (WeekData, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var w WeekData
	if err := dec.Decode(&w); err != nil {
		return WeekData{}, &ValidationError{Reason: err.Error()}
	}
	for i, p := range w.NextWeekPlan {
		if p.Priority != "" && !validPriorities[p.Priority] {
			return WeekData{}, &ValidationError{
				Reason: fmt.Sprintf("next_week_plan[%d]: priority %q is not one of P0/P1/P2", i, p.Priority),
			}
		}
	}
	return w.Normalize(), nil
}

// DecodePlans parses a next_week_plan list supplied by the caller, accepting
// either plan objects or JSON-encoded plan strings.
func DecodePlans(items []json.RawMessage) ([]NextWeekPlan, error) {
	plans := make([]NextWeekPlan, 0, len(items))
	for i, item := range items {
		var p NextWeekPlan
		if err := json.Unmarshal(item, &p); err == nil && p.Task != "" {
			plans = append(plans, p)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("next_week_plan[%d]: not a plan object or string", i)}
		}
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("next_week_plan[%d]: %v", i, err)}
		}
		plans = append(plans, p)
	}
	return plans, nil
}
