// Package analyzer turns a merged document corpus into a structured weekly
// report via one model call.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"teamie/internal/extract"
	"teamie/internal/jsonutil"
	"teamie/internal/llm"
	"teamie/internal/report"
)

// Status classifies the outcome of one analysis.
type Status string

const (
	// StatusSuccess: the model reply validated against the report schema.
	StatusSuccess Status = "success"
	// StatusRecovered: the model failed or said something odd; the report is
	// the empty default and the pipeline continued.
	StatusRecovered Status = "recovered"
	// StatusFatalConfig: credentials are missing or placeholders. Retrying
	// cannot help and the report should not be stored as a real result.
	StatusFatalConfig Status = "fatal_config"
)

// Outcome is the explicit result of an analysis. Report is always usable:
// empty-default on every non-success path. Usage is zero when the failure
// happened before the model call succeeded.
type Outcome struct {
	Status       Status
	Report       report.WeekData
	Usage        llm.Usage
	PromptLength int
	Reason       string
}

// Analyzer drives the model. It holds all configuration explicitly so tests
// can build one around a fake client.
type Analyzer struct {
	client       llm.Client
	systemPrompt string
	log          zerolog.Logger
}

// New creates an analyzer with the given client and system prompt. An empty
// prompt selects the embedded default.
func New(client llm.Client, systemPrompt string, log zerolog.Logger) *Analyzer {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Analyzer{
		client:       client,
		systemPrompt: systemPrompt,
		log:          log.With().Str("component", "analyzer").Logger(),
	}
}

// AnalyzeDocuments extracts and merges the uploaded files, then analyzes the
// combined corpus.
func (a *Analyzer) AnalyzeDocuments(ctx context.Context, docs []extract.Document, prevPlan []report.NextWeekPlan) Outcome {
	a.log.Info().Int("files", len(docs)).Msg("analyzing uploaded documents")
	return a.Analyze(ctx, extract.Merge(docs), prevPlan)
}

// Analyze runs one model call over the corpus and recovers a structured
// report from the reply. It never returns an error: model-shaped failures
// collapse into an empty default report (StatusRecovered); only missing
// credentials yield StatusFatalConfig.
func (a *Analyzer) Analyze(ctx context.Context, corpus string, prevPlan []report.NextWeekPlan) Outcome {
	userPrompt := a.buildUserPrompt(corpus, prevPlan)
	promptLen := len(a.systemPrompt) + len(userPrompt)

	text, usage, err := a.client.Complete(ctx, a.systemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			a.log.Error().Err(err).Msg("model credentials not configured")
			return Outcome{
				Status: StatusFatalConfig,
				Report: report.NewWeekData(),
				Reason: err.Error(),
			}
		}
		a.log.Error().Str("model", a.client.Name()).Err(err).Msg("model call failed, returning empty report")
		return Outcome{
			Status: StatusRecovered,
			Report: report.NewWeekData(),
			Reason: err.Error(),
		}
	}

	candidate := jsonutil.ExtractObject(text)
	week, derr := report.Decode([]byte(candidate))
	if derr != nil {
		snippet := candidate
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		a.log.Error().Err(derr).Str("candidate", snippet).Msg("model reply did not validate, returning empty report")
		return Outcome{
			Status:       StatusRecovered,
			Report:       report.NewWeekData(),
			Usage:        usage,
			PromptLength: promptLen,
			Reason:       derr.Error(),
		}
	}

	a.log.Info().
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Msg("analysis complete")
	return Outcome{
		Status:       StatusSuccess,
		Report:       week,
		Usage:        usage,
		PromptLength: promptLen,
	}
}

// buildUserPrompt embeds the corpus and, when present, last week's plan as
// continuity context. Absence is stated explicitly so the model does not
// invent continuity.
func (a *Analyzer) buildUserPrompt(corpus string, prevPlan []report.NextWeekPlan) string {
	prompt := fmt.Sprintf("本周文档内容：\n%s\n\n", corpus)
	if len(prevPlan) == 0 {
		return prompt + "这是首次汇报，没有上周数据。\n"
	}
	b, err := jsonutil.MarshalIndentNoEscape(map[string]any{"next_week_plan": prevPlan})
	if err != nil {
		return prompt + "这是首次汇报，没有上周数据。\n"
	}
	return prompt + fmt.Sprintf("上周进展汇报（JSON 格式）：\n%s\n", b)
}
