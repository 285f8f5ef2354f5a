// Package report defines the structured weekly report and its schema
// validation. Field names follow the JSON schema the model is instructed to
// emit.
package report

import "time"

// CompletedTask is one finished item of the week.
type CompletedTask struct {
	Task        string `json:"task"`
	Description string `json:"description"`
}

// IncompleteTask is one item that missed its expectation.
type IncompleteTask struct {
	Task     string `json:"task"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ExternalFeedback is one piece of feedback from outside the team.
type ExternalFeedback struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// NextWeekPlan is one planned item with a P0/P1/P2 priority.
type NextWeekPlan struct {
	Task     string `json:"task"`
	Priority string `json:"priority"`
	Goal     string `json:"goal"`
}

// WeekData is the distilled report for one reporting period. WeekPeriod is
// set from caller context, never by the model. Every list field defaults to
// empty: a failed analysis produces an empty WeekData, not a missing record.
type WeekData struct {
	WeekPeriod          string             `json:"week_period,omitempty"`
	CompletedTasks      []CompletedTask    `json:"completed_tasks"`
	IncompleteTasks     []IncompleteTask   `json:"incomplete_tasks"`
	MotivationDirection []string           `json:"motivation_direction"`
	InternalReflection  []string           `json:"internal_reflection"`
	ExternalFeedback    []ExternalFeedback `json:"external_feedback"`
	NextWeekPlan        []NextWeekPlan     `json:"next_week_plan"`
}

// NewWeekData returns an empty report with all list fields allocated.
func NewWeekData() WeekData {
	return WeekData{
		CompletedTasks:      []CompletedTask{},
		IncompleteTasks:     []IncompleteTask{},
		MotivationDirection: []string{},
		InternalReflection:  []string{},
		ExternalFeedback:    []ExternalFeedback{},
		NextWeekPlan:        []NextWeekPlan{},
	}
}

// Normalize replaces nil list fields with empty slices so serialized output
// always carries arrays.
func (w WeekData) Normalize() WeekData {
	if w.CompletedTasks == nil {
		w.CompletedTasks = []CompletedTask{}
	}
	if w.IncompleteTasks == nil {
		w.IncompleteTasks = []IncompleteTask{}
	}
	if w.MotivationDirection == nil {
		w.MotivationDirection = []string{}
	}
	if w.InternalReflection == nil {
		w.InternalReflection = []string{}
	}
	if w.ExternalFeedback == nil {
		w.ExternalFeedback = []ExternalFeedback{}
	}
	if w.NextWeekPlan == nil {
		w.NextWeekPlan = []NextWeekPlan{}
	}
	return w
}

// Project groups the week records of one tracked project.
type Project struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Weeks     map[int]WeekData `json:"weeks"`
}

// CurrentWeek returns the highest stored week number, or 0 for none.
func (p Project) CurrentWeek() int {
	max := 0
	for n := range p.Weeks {
		if n > max {
			max = n
		}
	}
	return max
}

// Summary is the list-view projection of a Project.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CurrentWeek int    `json:"current_week"`
	Status      string `json:"status"`
	TotalWeeks  int    `json:"total_weeks"`
}
