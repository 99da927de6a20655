package models

import "gorm.io/gorm"

// MigrateTable migrates every local table, including the mutation queue.
// Called once at startup and by tests against their in-memory database.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Product{},
		&Category{},
		&Customer{},
		&Supplier{},
		&Sale{},
		&Purchase{},
		&Expense{},
		&CashTransaction{},
		&Setting{},
		&StockAdjustment{},
		&TrashEntry{},
		&QueueItem{},
	)
}
