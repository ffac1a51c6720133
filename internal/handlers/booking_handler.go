package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/httpresp"
	"github.com/BruksfildServices01/housecall-booking/internal/middleware"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/housecall-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create       *ucBooking.CreateBooking
	get          *ucBooking.GetBooking
	list         *ucBooking.ListBookings
	updateStatus *ucBooking.UpdateStatus
	cancel       *ucBooking.CancelBooking
	overview     *ucBooking.Overview
}

func NewBookingHandler(
	create *ucBooking.CreateBooking,
	get *ucBooking.GetBooking,
	list *ucBooking.ListBookings,
	updateStatus *ucBooking.UpdateStatus,
	cancel *ucBooking.CancelBooking,
	overview *ucBooking.Overview,
) *BookingHandler {
	return &BookingHandler{
		create:       create,
		get:          get,
		list:         list,
		updateStatus: updateStatus,
		cancel:       cancel,
		overview:     overview,
	}
}

// ======================================================
// REQUESTS
// ======================================================

// Field rules live in the use case so the response lists every bad field at once.
type CreateBookingRequest struct {
	CustomerName         string  `json:"customer_name"`
	CustomerEmail        string  `json:"customer_email"`
	CustomerPhone        string  `json:"customer_phone"`
	Address              string  `json:"address"`
	PreferredDatetime    string  `json:"preferred_datetime"`
	ServiceType          string  `json:"service_type"`
	ServicePrice         float64 `json:"service_price"`
	PaymentMethod        string  `json:"payment_method"`
	Notes                string  `json:"notes"`
	PreferredBarberName  string  `json:"preferred_barber_name"`
	PreferredBarberPhone string  `json:"preferred_barber_phone"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CancelBookingRequest struct {
	CancellationReason string `json:"cancellation_reason"`
	CancelledBy        string `json:"cancelled_by"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.create.Execute(c.Request.Context(), ucBooking.CreateInput{
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		CustomerPhone:        req.CustomerPhone,
		Address:              req.Address,
		PreferredDatetime:    req.PreferredDatetime,
		ServiceType:          req.ServiceType,
		ServicePrice:         req.ServicePrice,
		PaymentMethod:        req.PaymentMethod,
		Notes:                req.Notes,
		PreferredBarberName:  req.PreferredBarberName,
		PreferredBarberPhone: req.PreferredBarberPhone,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, res)
}

// ======================================================
// READ
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	b, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	in := ucBooking.ListInput{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		Limit:  queryInt(c, "limit", ucBooking.DefaultListLimit),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("barber_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, CodeValidation, "barber_id must be a positive integer")
			return
		}
		barberID := uint(id)
		in.BarberID = &barberID
	}

	list, total, err := h.list.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Page[models.Booking](c, list, total, ucBooking.ClampLimit(in.Limit), max(in.Offset, 0))
}

func (h *BookingHandler) Overview(c *gin.Context) {
	ov, err := h.overview.Execute(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ov)
}

// ======================================================
// WRITE
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.updateStatus.Execute(c.Request.Context(), id, req.Status, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CancelBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.cancel.Execute(c.Request.Context(), ucBooking.CancelInput{
		BookingID: id,
		Reason:    req.CancellationReason,
		By:        req.CancelledBy,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, b)
}
