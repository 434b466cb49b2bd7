package services

import "gorm.io/gorm"

// ForModel returns a GORM scope that filters flagged content by type tag.
func ForModel(typeTag string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_type = ?", typeTag)
	}
}
