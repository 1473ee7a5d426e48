package config

import (
	"log"
	"os"
	"time"

	"github.com/zsmartex/powermatch/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DataBase *gorm.DB

func NewDatabase() (*gorm.DB, error) {
	var sslmode string
	if os.Getenv("DATABASE_SSLMODE") == "disable" {
		sslmode = "disable"
	} else {
		sslmode = "require"
	}

	dsn := "host=" + os.Getenv("DATABASE_HOST") +
		" port=" + GetEnv("DATABASE_PORT", "5432") +
		" user=" + os.Getenv("DATABASE_USER") +
		" password=" + os.Getenv("DATABASE_PASS") +
		" dbname=" + os.Getenv("DATABASE_NAME") +
		" sslmode=" + sslmode

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 newLogger,
	})
}

func ConnectDatabase() error {
	db, err := NewDatabase()
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(GetEnvAsInt("DATABASE_POOL", 25))
	sqlDB.SetMaxIdleConns(GetEnvAsInt("DATABASE_POOL", 25))
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if GetEnvAsBool("DATABASE_MIGRATE", false) {
		if err := db.AutoMigrate(models.Tables()...); err != nil {
			return err
		}
	}

	DataBase = db

	return nil
}
