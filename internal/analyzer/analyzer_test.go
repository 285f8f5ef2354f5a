package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"teamie/internal/extract"
	"teamie/internal/llm"
	"teamie/internal/report"
)

func newTestAnalyzer(client llm.Client) *Analyzer {
	return New(client, "", zerolog.Nop())
}

func TestAnalyzeDocumentsEndToEnd(t *testing.T) {
	fake := &llm.FakeClient{
		Response:  "```json\n{\"completed_tasks\":[{\"task\":\"A\",\"description\":\"done\"}]}\n```",
		FakeUsage: llm.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}
	a := newTestAnalyzer(fake)

	docs := []extract.Document{{
		Filename: "status.html",
		Content:  "<script>x</script><p>Shipped feature A</p>",
	}}
	out := a.AnalyzeDocuments(context.Background(), docs, nil)

	if out.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", out.Status, out.Reason)
	}
	if len(out.Report.CompletedTasks) != 1 || out.Report.CompletedTasks[0].Task != "A" {
		t.Fatalf("report = %+v", out.Report)
	}
	for _, l := range [][]string{out.Report.MotivationDirection, out.Report.InternalReflection} {
		if len(l) != 0 {
			t.Fatalf("expected empty list fields, got %+v", out.Report)
		}
	}
	if out.Usage.TotalTokens != 120 {
		t.Fatalf("usage = %+v", out.Usage)
	}
	// Extraction must have removed the script body before the model saw it.
	if !strings.Contains(fake.LastUserPrompt, "Shipped feature A") {
		t.Fatalf("corpus missing body text: %q", fake.LastUserPrompt)
	}
	if strings.Contains(fake.LastUserPrompt, "x</script>") || strings.Contains(fake.LastUserPrompt, "script>x") {
		t.Fatalf("script content reached the prompt")
	}
}

func TestAnalyzeUnparseableReplyYieldsEmptyReport(t *testing.T) {
	fake := &llm.FakeClient{
		Response:  "I'm sorry, I cannot produce a report right now.",
		FakeUsage: llm.Usage{PromptTokens: 50, CompletionTokens: 10, TotalTokens: 60},
	}
	out := newTestAnalyzer(fake).Analyze(context.Background(), "corpus", nil)

	if out.Status != StatusRecovered {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Report.WeekPeriod != "" {
		t.Fatalf("week_period set on failure: %q", out.Report.WeekPeriod)
	}
	if len(out.Report.CompletedTasks) != 0 || len(out.Report.NextWeekPlan) != 0 {
		t.Fatalf("report not empty: %+v", out.Report)
	}
	// The model did answer, so its usage is kept.
	if out.Usage.TotalTokens != 60 {
		t.Fatalf("usage = %+v", out.Usage)
	}
}

func TestAnalyzeModelErrorZeroUsage(t *testing.T) {
	fake := &llm.FakeClient{Err: context.DeadlineExceeded}
	out := newTestAnalyzer(fake).Analyze(context.Background(), "corpus", nil)

	if out.Status != StatusRecovered {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Usage != (llm.Usage{}) || out.PromptLength != 0 {
		t.Fatalf("usage should be zero before a successful call: %+v", out.Usage)
	}
}

func TestAnalyzeMissingCredentialsIsFatal(t *testing.T) {
	fake := &llm.FakeClient{Err: llm.ErrNotConfigured}
	out := newTestAnalyzer(fake).Analyze(context.Background(), "corpus", nil)
	if out.Status != StatusFatalConfig {
		t.Fatalf("status = %s, want fatal_config", out.Status)
	}
}

func TestPromptCarriesPreviousPlanVerbatim(t *testing.T) {
	fake := &llm.FakeClient{Response: "{}"}
	prev := []report.NextWeekPlan{{Task: "发布 v2", Priority: "P0", Goal: "上线"}}
	newTestAnalyzer(fake).Analyze(context.Background(), "corpus", prev)

	if !strings.Contains(fake.LastUserPrompt, "发布 v2") || !strings.Contains(fake.LastUserPrompt, "P0") {
		t.Fatalf("previous plan missing from prompt: %q", fake.LastUserPrompt)
	}
	if strings.Contains(fake.LastUserPrompt, "首次汇报") {
		t.Fatalf("first-report sentence present despite prior plan")
	}
}

func TestPromptStatesFirstReportExplicitly(t *testing.T) {
	fake := &llm.FakeClient{Response: "{}"}
	newTestAnalyzer(fake).Analyze(context.Background(), "corpus", nil)
	if !strings.Contains(fake.LastUserPrompt, "这是首次汇报，没有上周数据。") {
		t.Fatalf("first-report sentence missing: %q", fake.LastUserPrompt)
	}
}

func TestValidationFailureKeepsUsage(t *testing.T) {
	fake := &llm.FakeClient{
		Response:  `{"next_week_plan": [{"task": "x", "priority": "urgent", "goal": "y"}]}`,
		FakeUsage: llm.Usage{TotalTokens: 42},
	}
	out := newTestAnalyzer(fake).Analyze(context.Background(), "corpus", nil)
	if out.Status != StatusRecovered {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Usage.TotalTokens != 42 {
		t.Fatalf("usage dropped: %+v", out.Usage)
	}
}
