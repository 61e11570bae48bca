package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trailnet/trailnet-backend/internal/config"
)

// NewDB initializes the database connection using DSN from config.
//
// TranslateError is enabled so unique-index violations surface as
// gorm.ErrDuplicatedKey regardless of driver; the repositories map those
// onto the matching core error kind.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate ensures the schema is in sync with the models. Shared by NewDB
// and the sqlite-backed tests.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&User{}, &Follow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	// the three like kinds share one model across separate tables
	for _, kind := range LikeKinds {
		if err := gdb.Table(kind.Table()).AutoMigrate(&Like{}); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", kind.Table(), err)
		}
	}
	return nil
}
