package api

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricehound/pricehound/app/database"
	"github.com/pricehound/pricehound/app/scrape"
	"github.com/pricehound/pricehound/app/tasks"
)

func NewHandler(categories map[string]scrape.Category, store OpportunityReader, gate RunGate,
	runRepo database.RunRepository, runner tasks.RunnerInterface, planner tasks.PipelinePlanner,
	expirer tasks.MemoryExpirer, logs *LogHub, version string, maxSelection, memoryMaxDays int) *Handler {
	return &Handler{
		categories:    categories,
		store:         store,
		gate:          gate,
		runRepo:       runRepo,
		runner:        runner,
		planner:       planner,
		expirer:       expirer,
		logs:          logs,
		version:       version,
		startedAt:     time.Now(),
		maxSelection:  maxSelection,
		memoryMaxDays: memoryMaxDays,
	}
}

type runRequest struct {
	Categories []string `json:"categories"`
}

// StartRun validates the category selection, checks the demo run limit and
// enqueues a pipeline run. The run executes in the background; the
// response carries the run id so clients can poll its status.
func (h *Handler) StartRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if len(req.Categories) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No categories selected"})
		return
	}
	if len(req.Categories) > h.maxSelection {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Too many categories selected",
			"message": "Select at most " + strconv.Itoa(h.maxSelection) + " categories",
		})
		return
	}
	for _, name := range req.Categories {
		if _, ok := h.categories[name]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category", "category": name})
			return
		}
	}

	allowed, msg := h.gate.CanRun()
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Run not allowed", "message": msg})
		return
	}

	if h.runner.Busy() {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Run already in progress",
			"message": "Wait for the current run to finish before starting another",
		})
		return
	}

	runID, err := h.runRepo.CreateRun(req.Categories)
	if err != nil {
		slog.Error("Database error", "operation", "create_run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	task := tasks.NewPipelineRunTask(runID, req.Categories, h.planner, h.expirer, h.runRepo, h.memoryMaxDays)
	if err := h.runner.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing pipeline run", "run_id", runID, "error", err)
		h.finishFailed(runID, "failed to enqueue run")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue run",
			"details": err.Error(),
		})
		return
	}

	if err := h.gate.RecordRun(); err != nil {
		slog.Warn("Failed to record demo run", "run_id", runID, "error", err)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":     runID,
		"categories": req.Categories,
		"message":    msg,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func (h *Handler) finishFailed(runID int64, reason string) {
	if err := h.runRepo.FinishRun(runID, database.RunStatusFailed, 0, 0, reason); err != nil {
		slog.Error("Failed to mark run as failed", "run_id", runID, "error", err)
	}
}

func (h *Handler) GetOpportunities(c *gin.Context) {
	record := h.store.Load()

	c.JSON(http.StatusOK, gin.H{
		"opportunities": record.Opportunities,
		"total":         len(record.Opportunities),
		"last_updated":  record.LastUpdated,
	})
}

func (h *Handler) GetCategories(c *gin.Context) {
	names := make([]string, 0, len(h.categories))
	for name := range h.categories {
		names = append(names, name)
	}
	sort.Strings(names)

	c.JSON(http.StatusOK, gin.H{
		"categories":    names,
		"max_selection": h.maxSelection,
	})
}

func (h *Handler) GetRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	runs, err := h.runRepo.GetRecentRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

// GetLogs returns buffered log lines newer than the after parameter so the
// UI can tail pipeline progress by polling.
func (h *Handler) GetLogs(c *gin.Context) {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid after parameter"})
			return
		}
		after = parsed
	}

	entries := h.logs.After(after)

	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"last_seq": h.logs.LastSeq(),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	}

	if runCount, err := h.runRepo.GetRunCount(); err == nil {
		health["runs"] = runCount
	}

	health["loaded_categories"] = len(h.categories)
	health["busy"] = h.runner.Busy()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	record := h.store.Load()

	totalDiscount := 0.0
	bestDiscount := 0.0
	for _, opportunity := range record.Opportunities {
		if opportunity.Discount == nil {
			continue
		}
		totalDiscount += *opportunity.Discount
		if *opportunity.Discount > bestDiscount {
			bestDiscount = *opportunity.Discount
		}
	}

	stats := map[string]interface{}{
		"opportunities": len(record.Opportunities),
		"last_updated":  record.LastUpdated,
	}

	printer := message.NewPrinter(language.English)
	stats["total_discount"] = printer.Sprintf("$%.2f", totalDiscount)
	stats["best_discount"] = printer.Sprintf("$%.2f", bestDiscount)

	if runCount, err := h.runRepo.GetRunCount(); err == nil {
		stats["runs"] = runCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIGetRunDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run id"})
		return
	}

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *Handler) APIExpireMemory(c *gin.Context) {
	task := tasks.NewExpireMemoryTask(h.expirer, h.memoryMaxDays)
	if err := h.runner.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing expire task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue expire task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Memory expiry task enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}
