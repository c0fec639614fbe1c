package models

// Preference is a single entry in the key-value substrate.
type Preference struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

// TableName pins the key-value table name.
func (Preference) TableName() string {
	return "preferences"
}
