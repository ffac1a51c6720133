package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/httpresp"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/scheduler"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AdminHandler struct {
	admins    *repository.AdminGormRepository
	scheduler *scheduler.Scheduler
	loc       *time.Location
	now       func() time.Time
}

func NewAdminHandler(
	admins *repository.AdminGormRepository,
	sched *scheduler.Scheduler,
	loc *time.Location,
	now func() time.Time,
) *AdminHandler {
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{admins: admins, scheduler: sched, loc: loc, now: now}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	from, to := timezone.DayBounds(h.now(), h.loc)

	d, err := h.admins.Dashboard(c.Request.Context(), from, to)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, d)
}

// AuditLogs filters by action, entity and a from/to date range (YYYY-MM-DD, inclusive).
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	limit := clampLimit(queryInt(c, "limit", defaultPageSize))

	f := repository.AuditFilter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			httperr.BadRequest(c, CodeValidation, "from must be YYYY-MM-DD")
			return
		}
		f.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			httperr.BadRequest(c, CodeValidation, "to must be YYYY-MM-DD")
			return
		}
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}

	logs, total, err := h.admins.AuditLogs(c.Request.Context(), f)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}

// ======================================================
// BACKGROUND JOBS
// ======================================================

func (h *AdminHandler) SchedulerStatus(c *gin.Context) {
	httpresp.List(c, h.scheduler.Statuses())
}

// DailySummary sends yesterday's summaries now, outside the daily gate.
func (h *AdminHandler) DailySummary(c *gin.Context) {
	job, ok := h.scheduler.Job(scheduler.DailySummaryJob)
	if !ok {
		httperr.NotFound(c, "JOB_NOT_FOUND", "daily summary job is not registered")
		return
	}

	res, err := job.Run(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, res)
}
