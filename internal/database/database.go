package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/highcommand/highcommand/internal/config"
	"github.com/highcommand/highcommand/internal/models"
)

var DB *gorm.DB

// Connect opens the database selected by cfg.DBDriver. The sqlite driver is
// the default and needs no external server; mysql and postgres are for
// shared deployments.
func Connect(cfg *config.Config) error {
	logLevel := logger.Silent
	if cfg.LogLevel == "debug" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	logrus.WithField("driver", cfg.DBDriver).Info("database connection established")
	return nil
}

// Migrate creates or updates the schema for all models and adds the
// composite indexes the listing queries rely on.
func Migrate() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.JoinRequest{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(DB); err != nil {
		return err
	}

	logrus.Info("database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
