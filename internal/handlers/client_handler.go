package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/httpresp"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const recentClientBookings = 20

type ClientHandler struct {
	clients *repository.ClientGormRepository
}

func NewClientHandler(clients *repository.ClientGormRepository) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List searches by name, phone or email through ?query=.
func (h *ClientHandler) List(c *gin.Context) {
	limit := clampLimit(queryInt(c, "limit", defaultPageSize))
	offset := max(queryInt(c, "offset", 0), 0)

	clients, total, err := h.clients.Search(c.Request.Context(), c.Query("query"), limit, offset)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Page[models.Client](c, clients, total, limit, offset)
}

func (h *ClientHandler) GetByPhone(c *gin.Context) {
	ctx := c.Request.Context()
	phone := c.Param("phone")

	client, err := h.clients.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "CLIENT_NOT_FOUND", "client not found")
			return
		}
		httperr.FromError(c, err)
		return
	}

	bookings, err := h.clients.Bookings(ctx, client.Phone, recentClientBookings)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	httpresp.OK(c, gin.H{
		"client":   client,
		"bookings": bookings,
	})
}
