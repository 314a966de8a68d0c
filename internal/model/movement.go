package model

import "github.com/google/uuid"

// MovementKind classifies a Kardex entry.
type MovementKind string

const (
	KindStockIn  MovementKind = "STOCK_IN"
	KindStockOut MovementKind = "STOCK_OUT"
	KindCreated  MovementKind = "CREATED"
	KindDeleted  MovementKind = "DELETED"
)

// Movement is an immutable Kardex entry: the system of record for how a
// product's stock got to its current value. Rows are appended inside the
// same transaction that mutates stock and are never updated or deleted.
//
// Product and User references are nullable on purpose (SET NULL): the
// history must survive whatever happens to the rows it points at.
//
// Quantity is the moved amount for STOCK_IN/STOCK_OUT, and the absolute
// stock at that instant for CREATED/DELETED.
type Movement struct {
	BaseModel
	Kind     MovementKind `gorm:"type:varchar(20);not null" json:"kind"`
	Quantity int          `gorm:"not null" json:"quantity"`

	ProductID *uuid.UUID `gorm:"type:uuid" json:"product_id,omitempty"`
	Product   *Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"product,omitempty"`

	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User   *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}
