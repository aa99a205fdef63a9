// Package sqlite persists the bookkeeping records on the local device.
// Each repository adapts one domain record set to the corresponding port;
// nested values (entries, metal balances) are stored as JSON columns.
package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open opens (creating if needed) the SQLite database at path and runs
// migrations for every model.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := db.AutoMigrate(
		&customerModel{},
		&transactionModel{},
		&ledgerModel{},
		&stockModel{},
		&inventoryModel{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return db, nil
}
