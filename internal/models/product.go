package models

import "time"

// Product represents a coffee pod flavor in the catalog.
type Product struct {
	Barcode     string    `json:"barcode" gorm:"column:barcode;primaryKey" validate:"required,max=64"`
	FlavorName  string    `json:"flavor_name" gorm:"column:flavor_name;not null" validate:"required,min=1,max=100"`
	PricePerBox float64   `json:"price_per_box" gorm:"column:price_per_box;not null" validate:"gte=0"`
	PricePerPod float64   `json:"price_per_pod" gorm:"column:price_per_pod;not null" validate:"gte=0"`
	PodsPerBox  int       `json:"pods_per_box" gorm:"column:pods_per_box;not null" validate:"gt=0"`
	ImagePath   string    `json:"image_path,omitempty" gorm:"column:image_path" validate:"omitempty,max=255"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName pins the table created by the catalog schema.
func (Product) TableName() string {
	return "products"
}
