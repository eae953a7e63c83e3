package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recruitsync_backend/internal/config"
	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/models"
)

// Connect opens the configured database and applies the pool settings.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log.New(os.Stdout, "", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	logger.Info("Database connected", "driver", dialector.Name())
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.PlatformConnection{},
		&models.SyncLog{},
		&models.Department{},
		&models.Position{},
		&models.Candidate{},
		&models.Employee{},
		&models.EmployeeTask{},
		&models.Checklist{},
		&models.ChecklistItem{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("AutoMigrate completed")
	return nil
}

// DefaultOnboardingChecklist is seeded on an empty database so the first hire
// already gets a task list.
func DefaultOnboardingChecklist() *models.Checklist {
	steps := []struct{ title, description string }{
		{"Sign employment contract", "Collect the signed contract and tax forms."},
		{"Prepare workstation", "Laptop, accounts and building access ready before day one."},
		{"Team introduction", "Introduce the new hire to the team and their onboarding buddy."},
		{"Security training", "Complete the mandatory security awareness course."},
		{"30-day check-in", "Manager check-in at the end of the first month."},
	}

	checklist := &models.Checklist{Name: "Standard onboarding", Type: models.ChecklistTypeOnboarding}
	for i, s := range steps {
		checklist.Items = append(checklist.Items, models.ChecklistItem{
			Title:       s.title,
			Description: s.description,
			SortOrder:   i + 1,
		})
	}
	return checklist
}

// Seed inserts the default onboarding checklist unless one exists.
func Seed(db *gorm.DB) error {
	var existing models.Checklist
	err := db.Where("type = ?", models.ChecklistTypeOnboarding).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check onboarding checklist: %w", err)
	}

	checklist := DefaultOnboardingChecklist()
	if err := db.Create(checklist).Error; err != nil {
		return fmt.Errorf("seed onboarding checklist: %w", err)
	}

	logger.Info("Seeded default onboarding checklist", "items", len(checklist.Items))
	return nil
}
