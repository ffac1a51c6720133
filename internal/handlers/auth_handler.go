package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/config"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/middleware"
)

type AuthHandler struct {
	admins *repository.AdminGormRepository
	config *config.Config
	now    func() time.Time
}

func NewAuthHandler(admins *repository.AdminGormRepository, cfg *config.Config, now func() time.Time) *AuthHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthHandler{admins: admins, config: cfg, now: now}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	user, err := h.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "INVALID_CREDENTIALS", "invalid username or password")
			return
		}
		httperr.FromError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "INVALID_CREDENTIALS", "invalid username or password")
		return
	}

	now := h.now()
	token, err := middleware.IssueToken(h.config.JWTSecret, user.ID, user.Username, user.Role, now)
	if err != nil {
		httperr.Internal(c, "TOKEN_ERROR", "failed to generate token")
		return
	}

	if err := h.admins.TouchLogin(ctx, user.ID, now); err != nil {
		logger.WithContext(ctx).Warn("failed to record admin login", "admin_id", user.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(middleware.TokenTTL.Seconds()),
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	adminID, exists := c.Get(middleware.ContextAdminID)
	if !exists {
		httperr.Unauthorized(c, "INVALID_TOKEN", "admin not in context")
		return
	}

	user, err := h.admins.Get(c.Request.Context(), adminID.(uint))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "INVALID_TOKEN", "admin no longer exists")
			return
		}
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
