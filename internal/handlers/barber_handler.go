package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/httpresp"
	"github.com/BruksfildServices01/housecall-booking/internal/middleware"
	ucBarber "github.com/BruksfildServices01/housecall-booking/internal/usecase/barber"
)

const maxPhotoBytes = 5 << 20

// JobRunner triggers a background job on demand.
type JobRunner interface {
	Run(ctx context.Context) (any, error)
}

// ======================================================
// HANDLER
// ======================================================

type BarberHandler struct {
	manage  *ucBarber.Manage
	block   *ucBarber.BlockBarber
	unblock *ucBarber.UnblockBarber
	photo   *ucBarber.UploadPhoto
	sweep   JobRunner
}

func NewBarberHandler(
	manage *ucBarber.Manage,
	block *ucBarber.BlockBarber,
	unblock *ucBarber.UnblockBarber,
	photo *ucBarber.UploadPhoto,
	sweep JobRunner,
) *BarberHandler {
	return &BarberHandler{
		manage:  manage,
		block:   block,
		unblock: unblock,
		photo:   photo,
		sweep:   sweep,
	}
}

// ======================================================
// REQUESTS
// ======================================================

// Pointer fields let PUT change only what the body carries.
type BarberRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone           *string `json:"phone" binding:"omitempty,kephone"`
	Email           *string `json:"email" binding:"omitempty,email"`
	BadgeNumber     *string `json:"identity_badge_number" binding:"omitempty,max=30"`
	Specialties     *string `json:"specialties"`
	ExperienceYears *int    `json:"experience_years" binding:"omitempty,min=0"`
	IsActive        *bool   `json:"is_active"`
}

func (r BarberRequest) input() ucBarber.Input {
	return ucBarber.Input{
		Name:            r.Name,
		Phone:           r.Phone,
		Email:           r.Email,
		BadgeNumber:     r.BadgeNumber,
		Specialties:     r.Specialties,
		ExperienceYears: r.ExperienceYears,
		IsActive:        r.IsActive,
	}
}

type BlockRequest struct {
	BlockReason        string `json:"block_reason"`
	BlockedBy          string `json:"blocked_by"`
	BlockType          string `json:"block_type"`
	BlockDurationHours int    `json:"block_duration_hours" binding:"omitempty,min=0,max=8784"`
	BlockCategory      string `json:"block_category"`
	BlockSeverity      string `json:"block_severity"`
}

// ======================================================
// ROSTER
// ======================================================

func (h *BarberHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	barbers, err := h.manage.List(c.Request.Context(), includeInactive)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, barbers)
}

func (h *BarberHandler) Available(c *gin.Context) {
	barbers, err := h.manage.Available(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, barbers)
}

func (h *BarberHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	b, err := h.manage.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BarberHandler) Create(c *gin.Context) {
	var req BarberRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.manage.Create(c.Request.Context(), req.input())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, b)
}

func (h *BarberHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req BarberRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.manage.Update(c.Request.Context(), id, req.input())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BarberHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.manage.Delete(c.Request.Context(), id); err != nil {
		httperr.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BarberHandler) Stats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	stats, err := h.manage.Stats(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, stats)
}

func (h *BarberHandler) UploadPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	fh, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, CodeValidation, "a photo file of at most 5MB is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, CodeValidation, "could not read the uploaded photo")
		return
	}
	defer f.Close()

	b, err := h.photo.Execute(c.Request.Context(), id, f)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

// ======================================================
// BLOCKING
// ======================================================

func (h *BarberHandler) Block(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req BlockRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.BlockedBy == "" {
		req.BlockedBy = middleware.Actor(c)
	}

	b, err := h.block.Execute(c.Request.Context(), id, domainBarber.BlockRequest{
		Reason:        req.BlockReason,
		BlockedBy:     req.BlockedBy,
		Type:          req.BlockType,
		DurationHours: req.BlockDurationHours,
		Category:      req.BlockCategory,
		Severity:      req.BlockSeverity,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BarberHandler) Unblock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	b, err := h.unblock.Execute(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

// CheckExpiredBlocks runs the expiry sweep now.
func (h *BarberHandler) CheckExpiredBlocks(c *gin.Context) {
	res, err := h.sweep.Run(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, res)
}
