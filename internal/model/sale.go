package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale transaction header. Total is always the
// server-computed sum of item subtotals; client-supplied totals are
// display-only and never persisted.
type Sale struct {
	BaseModel
	Folio string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"folio"`
	Total decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`

	UserID *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	User   *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
}

// SaleItem is one line of a sale. UnitPrice is frozen at sale time and
// does not follow later cost changes. The product reference is RESTRICT:
// a product that has been sold can only ever be retired, never removed.
type SaleItem struct {
	BaseModel
	SaleID uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`

	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
}
