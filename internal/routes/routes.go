package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	"github.com/BruksfildServices01/housecall-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/housecall-booking/internal/db"
	domainPayment "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/handlers"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/payments"
	infraRepo "github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/storage"
	"github.com/BruksfildServices01/housecall-booking/internal/metrics"
	"github.com/BruksfildServices01/housecall-booking/internal/middleware"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
	"github.com/BruksfildServices01/housecall-booking/internal/scheduler"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
	ucBarber "github.com/BruksfildServices01/housecall-booking/internal/usecase/barber"
	ucBooking "github.com/BruksfildServices01/housecall-booking/internal/usecase/booking"
	ucPayment "github.com/BruksfildServices01/housecall-booking/internal/usecase/payment"
)

// Notifier is satisfied by *notify.Dispatcher.
type Notifier interface {
	Dispatch(msg notify.Message)
}

// Deps are the process singletons built in main (or a test).
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Location *time.Location

	// WorkingHours is normally the Redis-backed cache around the gorm repository.
	WorkingHours workinghours.Repository

	Audit    audit.Sink
	Notifier Notifier
	Photos   ucBarber.PhotoStore
	Gateway  domainPayment.Gateway

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// RegisterRoutes wires use cases, handlers and the background jobs that
// share them. The returned scheduler is not started.
func RegisterRoutes(r *gin.Engine, d Deps) *scheduler.Scheduler {
	cfg := d.Config
	now := d.Now
	if now == nil {
		now = time.Now
	}

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.CORSMiddleware(cfg.CORSAllowedOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(d.DB)
	barberRepo := infraRepo.NewBarberGormRepository(d.DB)
	paymentRepo := infraRepo.NewPaymentGormRepository(d.DB)
	clientRepo := infraRepo.NewClientGormRepository(d.DB)
	adminRepo := infraRepo.NewAdminGormRepository(d.DB)

	hoursRepo := d.WorkingHours
	if hoursRepo == nil {
		hoursRepo = infraRepo.NewWorkingHoursGormRepository(d.DB)
	}
	if d.Location == nil {
		d.Location = timezone.Location(cfg.Timezone)
	}
	if d.Photos == nil {
		d.Photos = storage.Disabled{}
	}
	if d.Gateway == nil {
		d.Gateway = payments.Unavailable{}
	}

	bookingOpts := ucBooking.Options{
		Location:          d.Location,
		ServiceDuration:   cfg.ServiceDuration,
		TravelBuffer:      cfg.TravelBuffer,
		EnforceGlobalSlot: cfg.EnforceGlobalSlot,
		SerializeWrites:   !dbpkg.IsPostgres(d.DB),
		Now:               now,
	}

	// ======================================================
	// USE CASES: BOOKINGS
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(bookingRepo, hoursRepo, d.Audit, d.Notifier, bookingOpts)
	getBookingUC := ucBooking.NewGetBooking(bookingRepo)
	listBookingsUC := ucBooking.NewListBookings(bookingRepo, bookingOpts)
	updateStatusUC := ucBooking.NewUpdateStatus(bookingRepo, d.Audit, bookingOpts)
	cancelBookingUC := ucBooking.NewCancelBooking(bookingRepo, barberRepo, d.Audit, d.Notifier, bookingOpts)
	overviewUC := ucBooking.NewOverview(bookingRepo, bookingOpts)
	slotsUC := ucBooking.NewAvailableSlots(bookingRepo, hoursRepo, bookingOpts)

	// ======================================================
	// USE CASES: BARBERS
	// ======================================================
	manageBarbersUC := ucBarber.NewManage(barberRepo)
	blockBarberUC := ucBarber.NewBlockBarber(barberRepo, d.Audit, d.Notifier, d.Location, now)
	unblockBarberUC := ucBarber.NewUnblockBarber(barberRepo, d.Audit)
	sweepUC := ucBarber.NewSweepExpiredBlocks(barberRepo, d.Audit, now)
	photoUC := ucBarber.NewUploadPhoto(barberRepo, d.Photos, now)
	warnUC := ucBarber.NewWarnExpiringBlocks(barberRepo, d.Notifier, cfg.Admin.Email, d.Location, now)
	summaryUC := ucBarber.NewDailySummary(barberRepo, d.Notifier, d.Location, now)

	// ======================================================
	// USE CASES: PAYMENTS
	// ======================================================
	paymentDeps := ucPayment.Deps{
		Repo:     paymentRepo,
		Gateway:  d.Gateway,
		Audit:    d.Audit,
		Notifier: d.Notifier,
		Location: d.Location,
		Now:      now,
	}

	// ======================================================
	// BACKGROUND JOBS
	// ======================================================
	blockExpiryJob := scheduler.NewBlockExpiry(sweepUC, cfg.BlockSweepInterval)
	sched := scheduler.New(
		blockExpiryJob,
		scheduler.NewBlockExpiryWarning(warnUC, cfg.BlockSweepInterval),
		scheduler.NewDailySummary(summaryUC, cfg.DailySummaryHour, d.Location),
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(adminRepo, cfg, now)
	bookingHandler := handlers.NewBookingHandler(
		createBookingUC,
		getBookingUC,
		listBookingsUC,
		updateStatusUC,
		cancelBookingUC,
		overviewUC,
	)
	barberHandler := handlers.NewBarberHandler(
		manageBarbersUC,
		blockBarberUC,
		unblockBarberUC,
		photoUC,
		blockExpiryJob,
	)
	paymentHandler := handlers.NewPaymentHandler(
		ucPayment.NewCreatePayment(paymentDeps),
		ucPayment.NewMarkReceived(paymentDeps),
		ucPayment.NewMarkPending(paymentDeps),
		ucPayment.NewResendReceipt(paymentDeps),
		ucPayment.NewQuery(paymentRepo),
	)
	workingHoursHandler := handlers.NewWorkingHoursHandler(hoursRepo, slotsUC, d.Audit, d.Location, cfg.ServiceDuration)
	clientHandler := handlers.NewClientHandler(clientRepo)
	adminHandler := handlers.NewAdminHandler(adminRepo, sched, d.Location, now)

	// ======================================================
	// PLATFORM
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": now().UTC()})
	})
	r.GET("/metrics", metrics.Handler())

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	admin := middleware.AuthMiddleware(cfg)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.GET("/profile", admin, authHandler.Profile)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", bookingHandler.Create)
		bookings.GET("/stats/overview", admin, bookingHandler.Overview)
		bookings.GET("", admin, bookingHandler.List)
		bookings.GET("/:id", bookingHandler.Get)
		bookings.PATCH("/:id/status", admin, bookingHandler.UpdateStatus)
		bookings.POST("/:id/cancel", bookingHandler.Cancel)
	}

	barbers := api.Group("/barbers")
	{
		barbers.GET("/available", barberHandler.Available)
		barbers.POST("/check-expired-blocks", admin, barberHandler.CheckExpiredBlocks)

		barbers.GET("", admin, barberHandler.List)
		barbers.POST("", admin, barberHandler.Create)
		barbers.GET("/:id", admin, barberHandler.Get)
		barbers.PUT("/:id", admin, barberHandler.Update)
		barbers.DELETE("/:id", admin, barberHandler.Delete)
		barbers.GET("/:id/stats", admin, barberHandler.Stats)
		barbers.POST("/:id/photo", admin, barberHandler.UploadPhoto)
		barbers.POST("/:id/block", admin, barberHandler.Block)
		barbers.POST("/:id/unblock", admin, barberHandler.Unblock)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", paymentHandler.Create)
		payments.GET("", admin, paymentHandler.List)
		payments.GET("/:id", paymentHandler.Get)
		payments.PUT("/:id/mark-received", admin, paymentHandler.MarkReceived)
		payments.PUT("/:id/mark-pending", admin, paymentHandler.MarkPending)
		payments.POST("/:id/resend-receipt", admin, paymentHandler.ResendReceipt)
	}

	hours := api.Group("/working-hours")
	{
		hours.GET("", workingHoursHandler.List)
		hours.GET("/summary", workingHoursHandler.Summary)
		hours.POST("/check", workingHoursHandler.Check)
		hours.GET("/slots/:date", workingHoursHandler.Slots)
		hours.POST("/reset", admin, workingHoursHandler.Reset)
		hours.PUT("/:day", admin, workingHoursHandler.UpdateDay)
	}

	clients := api.Group("/clients", admin)
	{
		clients.GET("", clientHandler.List)
		clients.GET("/phone/:phone", clientHandler.GetByPhone)
	}

	adminGroup := api.Group("/admin", admin, middleware.RequireRole("admin"))
	{
		adminGroup.GET("/dashboard", adminHandler.Dashboard)
		adminGroup.GET("/audit-logs", adminHandler.AuditLogs)
		adminGroup.GET("/scheduler", adminHandler.SchedulerStatus)
		adminGroup.POST("/daily-summary", adminHandler.DailySummary)
	}

	return sched
}
