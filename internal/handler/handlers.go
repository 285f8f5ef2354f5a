package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"teamie/internal/analyzer"
	"teamie/internal/extract"
	"teamie/internal/llm"
	"teamie/internal/metrics"
	"teamie/internal/modelcfg"
	"teamie/internal/report"
	"teamie/internal/store"
)

const analysisTimeout = 5 * time.Minute

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store        *store.Store
	models       *modelcfg.Provider
	clients      ClientFactory
	systemPrompt string
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		store:        deps.Store,
		models:       deps.Models,
		clients:      deps.Clients,
		systemPrompt: deps.SystemPrompt,
		metrics:      deps.Metrics,
		logger:       deps.Logger.With().Str("component", "handlers").Logger(),
	}
}

// Root handles GET /api/.
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Teamie API is running", "version": "1.0.0"})
}

// Upload handles POST /api/upload. It creates the project, acknowledges as
// soon as the files are read, and runs analysis in the background; the
// client polls the week endpoint for the result.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	projectName := strings.TrimSpace(c.FormValue("project_name"))
	if projectName == "" {
		return badRequest(c, "项目名称不能为空")
	}
	weekStart := strings.TrimSpace(c.FormValue("week_start_date"))

	docs, err := h.formDocuments(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if len(docs) == 0 {
		return badRequest(c, "没有上传文件")
	}

	projectID, err := h.store.CreateProject(projectName)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if _, err := h.store.SaveDocument(projectID, []byte(d.Content), d.Filename, 1, ""); err != nil {
			h.logger.Warn().Str("project", projectID).Str("file", d.Filename).Err(err).Msg("document write failed")
		} else if h.metrics != nil {
			h.metrics.DocumentsStored.Inc()
		}
	}

	model := h.models.Current()
	tokens := llm.CountTokens(extract.Merge(docs))
	go h.runAnalysis(projectID, 1, docs, nil, weekPeriod(weekStart))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":           true,
		"message":           "文件上传成功，分析进行中",
		"project_id":        projectID,
		"week":              1,
		"estimated_seconds": h.models.EstimateSeconds(tokens, model),
	})
}

// AnalyzeNextWeek handles POST /api/projects/:id/analyze-next-week. Unlike
// upload it blocks until the analysis finishes and returns the report, with
// last week's plan fed back as continuity context.
func (h *Handlers) AnalyzeNextWeek(c *fiber.Ctx) error {
	id := c.Params("id")
	p, err := h.store.GetProject(id)
	if err != nil {
		return h.storeError(c, err)
	}

	docs, err := h.formDocuments(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if len(docs) == 0 {
		return badRequest(c, "没有上传文件")
	}

	var prevPlan []report.NextWeekPlan
	current := p.CurrentWeek()
	if current > 0 {
		prevPlan = p.Weeks[current].NextWeekPlan
	}
	week := current + 1

	for _, d := range docs {
		if _, err := h.store.SaveDocument(id, []byte(d.Content), d.Filename, week, ""); err != nil {
			h.logger.Warn().Str("project", id).Str("file", d.Filename).Err(err).Msg("document write failed")
		} else if h.metrics != nil {
			h.metrics.DocumentsStored.Inc()
		}
	}

	ctx, cancel := context.WithTimeout(c.Context(), analysisTimeout)
	defer cancel()
	outcome := h.analyze(ctx, docs, prevPlan)
	if outcome.Status == analyzer.StatusFatalConfig {
		return fiber.NewError(fiber.StatusServiceUnavailable, "模型未配置: "+outcome.Reason)
	}
	if err := h.store.UpdateWeek(id, week, outcome.Report); err != nil {
		return h.storeError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("第%d周分析完成", week),
		"week":    week,
		"data":    outcome.Report,
	})
}

// ListProjects handles GET /api/projects.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	summaries, err := h.store.ListProjects()
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}

// GetProject handles GET /api/projects/:id.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	p, err := h.store.GetProject(c.Params("id"))
	if err != nil {
		return h.storeError(c, err)
	}
	current := p.CurrentWeek()
	if current == 0 {
		current = 1
	}
	return c.JSON(fiber.Map{
		"id":           p.ID,
		"name":         p.Name,
		"status":       p.Status,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
		"total_weeks":  len(p.Weeks),
		"current_week": current,
	})
}

// DeleteProject handles DELETE /api/projects/:id.
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	if err := h.store.DeleteProject(c.Params("id")); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "项目删除成功"})
}

// UpdateStatus handles PUT /api/projects/:id/status.
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "无效的请求体")
	}
	status := strings.TrimSpace(body.Status)
	if status == "" {
		return badRequest(c, "状态不能为空")
	}
	if err := h.store.UpdateStatus(c.Params("id"), status); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "状态更新成功"})
}

// GetWeek handles GET /api/projects/:id/week/:week.
func (h *Handlers) GetWeek(c *fiber.Ctx) error {
	week, err := c.ParamsInt("week")
	if err != nil {
		return badRequest(c, "无效的周数")
	}
	w, err := h.store.GetWeek(c.Params("id"), week)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(w)
}

// UpdateWeek handles PUT /api/projects/:id/week/:week with a full report.
func (h *Handlers) UpdateWeek(c *fiber.Ctx) error {
	week, err := c.ParamsInt("week")
	if err != nil {
		return badRequest(c, "无效的周数")
	}
	data, derr := report.Decode(c.Body())
	if derr != nil {
		return badRequest(c, derr.Error())
	}
	if err := h.store.UpdateWeek(c.Params("id"), week, data); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "周报更新成功"})
}

// DeleteWeek handles DELETE /api/projects/:id/week/:week.
func (h *Handlers) DeleteWeek(c *fiber.Ctx) error {
	week, err := c.ParamsInt("week")
	if err != nil {
		return badRequest(c, "无效的周数")
	}
	if err := h.store.DeleteWeek(c.Params("id"), week); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "周报删除成功"})
}

// UpdatePlan handles POST /api/projects/:id/week/:week/update-plan. It
// replaces only the next_week_plan of an existing week, creating the week
// record if absent.
func (h *Handlers) UpdatePlan(c *fiber.Ctx) error {
	week, err := c.ParamsInt("week")
	if err != nil {
		return badRequest(c, "无效的周数")
	}
	var body struct {
		NextWeekPlan []json.RawMessage `json:"next_week_plan"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return badRequest(c, "无效的请求体")
	}
	plans, derr := report.DecodePlans(body.NextWeekPlan)
	if derr != nil {
		return badRequest(c, derr.Error())
	}

	id := c.Params("id")
	w, err := h.store.GetWeek(id, week)
	if errors.Is(err, store.ErrNotFound) {
		// The project itself must exist; a missing week starts empty.
		if _, perr := h.store.GetProject(id); perr != nil {
			return h.storeError(c, perr)
		}
		w = report.NewWeekData()
	} else if err != nil {
		return h.storeError(c, err)
	}
	w.NextWeekPlan = plans

	if err := h.store.UpdateWeek(id, week, w); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "下周计划更新成功"})
}

// ListDocuments handles GET /api/projects/:id/week/:week/documents.
func (h *Handlers) ListDocuments(c *fiber.Ctx) error {
	week, err := c.ParamsInt("week")
	if err != nil {
		return badRequest(c, "无效的周数")
	}
	docs, err := h.store.ListDocuments(c.Params("id"), week)
	if err != nil {
		return h.storeError(c, err)
	}
	if docs == nil {
		docs = []string{}
	}
	return c.JSON(fiber.Map{"documents": docs})
}

// GetModelConfig handles GET /api/config/model.
func (h *Handlers) GetModelConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"current_model":    h.models.Current(),
		"available_models": h.models.Available(),
	})
}

// SetModelConfig handles PUT /api/config/model.
func (h *Handlers) SetModelConfig(c *fiber.Ctx) error {
	var body struct {
		Model string `json:"model"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "无效的请求体")
	}
	if err := h.models.SetCurrent(strings.TrimSpace(body.Model)); err != nil {
		if errors.Is(err, modelcfg.ErrUnknownModel) {
			return badRequest(c, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "current_model": h.models.Current()})
}

// formDocuments reads the multipart upload into extracted documents. Both
// the multi-file "files" field and the single "file" field are accepted.
func (h *Handlers) formDocuments(c *fiber.Ctx) ([]extract.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("无效的 multipart 请求")
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["file"]...)

	docs := make([]extract.Document, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("读取文件 %s 失败", fh.Filename)
		}
		buf, rerr := io.ReadAll(f)
		f.Close()
		if rerr != nil {
			return nil, fmt.Errorf("读取文件 %s 失败", fh.Filename)
		}
		docs = append(docs, extract.Document{Filename: fh.Filename, Content: string(buf)})
	}
	return docs, nil
}

// runAnalysis performs the deferred upload analysis and stores the result.
// Fatal configuration failures leave the initial empty week in place.
func (h *Handlers) runAnalysis(projectID string, week int, docs []extract.Document, prevPlan []report.NextWeekPlan, period string) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	outcome := h.analyze(ctx, docs, prevPlan)
	if outcome.Status == analyzer.StatusFatalConfig {
		h.logger.Error().Str("project", projectID).Str("reason", outcome.Reason).Msg("analysis aborted, model not configured")
		if h.metrics != nil {
			h.metrics.RecordError("analyzer", "not_configured")
		}
		return
	}

	data := outcome.Report
	data.WeekPeriod = period
	if err := h.store.UpdateWeek(projectID, week, data); err != nil {
		h.logger.Error().Str("project", projectID).Int("week", week).Err(err).Msg("storing analysis result failed")
	}
}

// analyze runs one synthesis over the documents and records metrics.
func (h *Handlers) analyze(ctx context.Context, docs []extract.Document, prevPlan []report.NextWeekPlan) analyzer.Outcome {
	model := h.models.Current()
	client := h.clients(model)
	defer client.Close()

	a := analyzer.New(client, h.systemPrompt, h.logger)
	start := time.Now()
	outcome := a.AnalyzeDocuments(ctx, docs, prevPlan)
	if h.metrics != nil {
		h.metrics.RecordAnalysis(model, string(outcome.Status))
		h.metrics.ObserveAnalysisDuration(model, time.Since(start).Seconds())
		h.metrics.RecordTokens(model, outcome.Usage.PromptTokens, outcome.Usage.CompletionTokens)
	}
	return outcome
}

func (h *Handlers) storeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "项目或周报不存在")
	}
	return err
}

func badRequest(c *fiber.Ctx, detail string) error {
	return fiber.NewError(fiber.StatusBadRequest, detail)
}

// weekPeriod renders "start 至 start+6d" from an ISO start date, or empty
// when the date is absent or malformed.
func weekPeriod(startDate string) string {
	if startDate == "" {
		return ""
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return ""
	}
	end := start.AddDate(0, 0, 6)
	return start.Format("2006-01-02") + " 至 " + end.Format("2006-01-02")
}
