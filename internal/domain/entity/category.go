package entity

import "time"

// Category agrupa productos. Los umbrales son overrides opcionales de la configuración global.
type Category struct {
	ID                string
	Name              string
	LowStockThreshold *int64
	ReorderPoint      *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
