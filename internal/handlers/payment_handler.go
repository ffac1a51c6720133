package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domainPayment "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/httpresp"
	"github.com/BruksfildServices01/housecall-booking/internal/middleware"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	ucPayment "github.com/BruksfildServices01/housecall-booking/internal/usecase/payment"
)

type PaymentHandler struct {
	create  *ucPayment.CreatePayment
	mark    *ucPayment.MarkReceived
	revert  *ucPayment.MarkPending
	receipt *ucPayment.ResendReceipt
	query   *ucPayment.Query
}

func NewPaymentHandler(
	create *ucPayment.CreatePayment,
	mark *ucPayment.MarkReceived,
	revert *ucPayment.MarkPending,
	receipt *ucPayment.ResendReceipt,
	query *ucPayment.Query,
) *PaymentHandler {
	return &PaymentHandler{create: create, mark: mark, revert: revert, receipt: receipt, query: query}
}

type CreatePaymentRequest struct {
	BookingID     uint    `json:"booking_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	PhoneNumber   string  `json:"phone_number"`
	CardToken     string  `json:"card_token"`
	Notes         string  `json:"notes" binding:"max=1000"`
}

type MarkReceivedRequest struct {
	AdminNotes string `json:"admin_notes" binding:"max=1000"`
}

type MarkPendingRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.create.Execute(c.Request.Context(), ucPayment.CreateInput{
		BookingID:     req.BookingID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PhoneNumber:   req.PhoneNumber,
		CardToken:     req.CardToken,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, p)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *PaymentHandler) List(c *gin.Context) {
	f := domainPayment.Filter{
		Status: c.Query("status"),
		Method: c.Query("payment_method"),
		Limit:  clampLimit(queryInt(c, "limit", defaultPageSize)),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("booking_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, CodeValidation, "booking_id must be a positive integer")
			return
		}
		bookingID := uint(id)
		f.BookingID = &bookingID
	}

	list, total, err := h.query.List(c.Request.Context(), f)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Page[models.Payment](c, list, total, f.Limit, max(f.Offset, 0))
}

func (h *PaymentHandler) MarkReceived(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req MarkReceivedRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	p, err := h.mark.Execute(c.Request.Context(), id, req.AdminNotes, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *PaymentHandler) MarkPending(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req MarkPendingRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	p, err := h.revert.Execute(c.Request.Context(), id, req.Reason, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *PaymentHandler) ResendReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.receipt.Execute(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, p)
}
