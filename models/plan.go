package models

// Plan is read-only reference data. A FileLimit of 0 means unlimited.
type Plan struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	PriceCents int64  `gorm:"not null" json:"price_cents"`
	FileLimit  int    `gorm:"not null" json:"file_limit"`
}
