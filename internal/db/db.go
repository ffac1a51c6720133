package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/housecall-booking/internal/config"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DBDriver, dsnFor(cfg))
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}

	if err := Migrate(db); err != nil {
		logger.Fatal("failed to migrate", "error", err)
	}

	if err := SeedAdmin(db, cfg.Admin); err != nil {
		logger.Fatal("failed to seed admin user", "error", err)
	}

	return db
}

func dsnFor(cfg *config.Config) string {
	if cfg.DBDriver == DriverSQLite {
		return cfg.SQLitePath
	}
	return cfg.DBUrl
}

// Open connects with the driver's pool settings. Times are stored in UTC.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}

	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
		db, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; the booking path relies on this for serialization
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	case DriverPostgres, "":
		gcfg.PrepareStmt = true
		db, err := gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
		return db, nil
	}

	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == DriverPostgres
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Barber{},
		&models.Client{},
		&models.Booking{},
		&models.Payment{},
		&models.WorkingHours{},
		&models.AdminUser{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	if IsPostgres(db) {
		if err := migratePostgres(db); err != nil {
			return err
		}
	}

	return SeedWorkingHours(db)
}

// No two occupying bookings of one barber may overlap. The booking
// transaction checks this first; the constraint catches anything that slips past.
const barberWindowConstraint = `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'bookings_barber_window_excl'
	) THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_barber_window_excl
		EXCLUDE USING gist (
			barber_id WITH =,
			tstzrange(window_start, window_end, '[)') WITH &&
		)
		WHERE (barber_id IS NOT NULL AND status NOT IN ('cancelled', 'completed', 'no_show'));
	END IF;
END
$$;`

func migratePostgres(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}
	return db.Exec(barberWindowConstraint).Error
}

func SeedWorkingHours(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.WorkingHours{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := workinghours.Defaults()
	return db.Create(&defaults).Error
}

func SeedAdmin(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	logger.Get().Info("seeding default admin user", "username", admin.Username)
	return db.Create(&models.AdminUser{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: string(hashed),
		Role:         "admin",
	}).Error
}
