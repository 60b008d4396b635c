package models

import "gorm.io/gorm"

// All lists every ledger table in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Order{},
		&MarketPrice{},
		&TopUp{},
		&Withdrawal{},
		&Appeal{},
	}
}

// AutoMigrate creates or updates the ledger schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
