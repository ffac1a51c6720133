package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/httpresp"
	"github.com/BruksfildServices01/housecall-booking/internal/middleware"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/housecall-booking/internal/usecase/booking"
)

type WorkingHoursHandler struct {
	repo    workinghours.Repository
	slots   *ucBooking.AvailableSlots
	audit   audit.Sink
	loc     *time.Location
	service time.Duration
}

func NewWorkingHoursHandler(
	repo workinghours.Repository,
	slots *ucBooking.AvailableSlots,
	auditSink audit.Sink,
	loc *time.Location,
	service time.Duration,
) *WorkingHoursHandler {
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	return &WorkingHoursHandler{repo: repo, slots: slots, audit: auditSink, loc: loc, service: service}
}

type CheckHoursRequest struct {
	Datetime string `json:"datetime" binding:"required"`
}

type UpdateDayRequest struct {
	IsOpen    *bool   `json:"is_open"`
	OpenTime  *string `json:"open_time" binding:"omitempty,hhmm"`
	CloseTime *string `json:"close_time" binding:"omitempty,hhmm"`
	Notes     *string `json:"notes" binding:"omitempty,max=500"`
}

func (h *WorkingHoursHandler) schedule(c *gin.Context) (*workinghours.Schedule, bool) {
	hours, err := h.repo.List(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return workinghours.NewSchedule(hours, h.loc), true
}

func (h *WorkingHoursHandler) List(c *gin.Context) {
	s, ok := h.schedule(c)
	if !ok {
		return
	}
	httpresp.List(c, s.Days())
}

func (h *WorkingHoursHandler) Summary(c *gin.Context) {
	s, ok := h.schedule(c)
	if !ok {
		return
	}
	httpresp.OK(c, gin.H{
		"timezone": h.loc.String(),
		"days":     s.Summary(),
	})
}

// Check answers whether a booking could start at the given instant.
func (h *WorkingHoursHandler) Check(c *gin.Context) {
	var req CheckHoursRequest
	if !bindJSON(c, &req) {
		return
	}

	at, err := ucBooking.ParseDatetime(req.Datetime, h.loc)
	if err != nil {
		httperr.BadRequest(c, CodeValidation, "datetime must be ISO-8601")
		return
	}

	s, ok := h.schedule(c)
	if !ok {
		return
	}
	httpresp.OK(c, s.Check(at, h.service))
}

func (h *WorkingHoursHandler) Slots(c *gin.Context) {
	minutes := queryInt(c, "duration", int(h.service/time.Minute))
	if minutes < 15 || minutes > 8*60 {
		httperr.BadRequest(c, CodeValidation, "duration must be between 15 and 480 minutes")
		return
	}

	res, err := h.slots.Execute(c.Request.Context(), c.Param("date"), time.Duration(minutes)*time.Minute)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, res)
}

func (h *WorkingHoursHandler) UpdateDay(c *gin.Context) {
	day, ok := parseDay(c.Param("day"))
	if !ok {
		httperr.BadRequest(c, CodeValidation, "day must be 0-6 or a weekday name")
		return
	}

	var req UpdateDayRequest
	if !bindJSON(c, &req) {
		return
	}

	s, ok := h.schedule(c)
	if !ok {
		return
	}

	wh := models.WorkingHours{DayOfWeek: day, DayName: workinghours.DayName(day)}
	for _, existing := range s.Days() {
		if existing.DayOfWeek == day {
			wh = existing
		}
	}
	if req.IsOpen != nil {
		wh.IsOpen = *req.IsOpen
	}
	if req.OpenTime != nil {
		wh.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		wh.CloseTime = *req.CloseTime
	}
	if req.Notes != nil {
		wh.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := workinghours.ValidateDay(wh); err != nil {
		httperr.BadRequest(c, CodeValidation, err.Error())
		return
	}

	// upsert keys on day_of_week
	wh.ID = 0
	if err := h.repo.SaveDay(c.Request.Context(), &wh); err != nil {
		httperr.FromError(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		Actor:  middleware.Actor(c),
		Action: "working_hours_updated",
		Entity: "working_hours",
		Metadata: map[string]any{
			"day_of_week": wh.DayOfWeek,
			"is_open":     wh.IsOpen,
			"open_time":   wh.OpenTime,
			"close_time":  wh.CloseTime,
		},
	})

	if s, ok = h.schedule(c); !ok {
		return
	}
	for _, saved := range s.Days() {
		if saved.DayOfWeek == day {
			wh = saved
		}
	}
	httpresp.OK(c, wh)
}

func (h *WorkingHoursHandler) Reset(c *gin.Context) {
	if err := h.repo.Reset(c.Request.Context()); err != nil {
		httperr.FromError(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		Actor:  middleware.Actor(c),
		Action: "working_hours_reset",
		Entity: "working_hours",
	})

	h.List(c)
}

// parseDay accepts 0-6 (Sunday first) or an English weekday name.
func parseDay(raw string) (int, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, n >= 0 && n <= 6
	}
	for d := 0; d < 7; d++ {
		if strings.EqualFold(workinghours.DayName(d), raw) {
			return d, true
		}
	}
	return 0, false
}
