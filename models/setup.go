package models

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDataBase Open the database and make sure the images table exists
func ConnectDataBase(driver string, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect %s database: %w", driver, err)
	}
	log.Info(fmt.Sprintf("Connected to %s database", driver))

	if err := db.AutoMigrate(&Image{}); err != nil {
		return nil, fmt.Errorf("cannot migrate images table: %w", err)
	}
	return db, nil
}

// CloseDataBase Close the connection pool underneath db
func CloseDataBase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
