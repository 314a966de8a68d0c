package model

// Category groups products for the catalog. Optional on products: a
// product create that references an unknown category simply drops the
// reference (documented permissive behavior, not an error).
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
}
