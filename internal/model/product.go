package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus is the product lifecycle state. A product is never
// physically deleted once it is referenced by movements or sale items;
// "deleting" it retires it, and re-creating the same SKU revives it.
type ProductStatus string

const (
	StatusActive  ProductStatus = "ACTIVE"
	StatusRetired ProductStatus = "RETIRED"
)

type Product struct {
	BaseModel
	SKU           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name          string          `gorm:"type:varchar(150);not null" json:"name" validate:"required"`
	Description   string          `gorm:"type:text" json:"description"`
	Cost          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"cost"`
	Stock         int             `gorm:"not null;default:0;check:stock >= 0" json:"stock" validate:"gte=0"`
	MinStockLevel int             `gorm:"not null;default:0" json:"min_stock_level" validate:"gte=0"` // 0 disables low-stock alerting
	Status        ProductStatus   `gorm:"type:varchar(10);not null;default:'ACTIVE'" json:"status"`

	CategoryID *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (p *Product) Active() bool {
	return p.Status == StatusActive
}

// InventoryValue is stock * unit cost.
func (p *Product) InventoryValue() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// IsLowStock is the single low-stock predicate for the whole system
// (stock endpoints, sale receipts, dashboard). A threshold of zero means
// alerting is disabled, so a zero-threshold product is never low stock
// even when its stock hits zero. The dashboard repeats this predicate in
// SQL; keep both in sync.
func IsLowStock(minLevel, stock int) bool {
	return minLevel > 0 && stock <= minLevel
}
