package service

import (
	"database/sql"

	"go-pos-kardex/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner is gorm's transaction entrypoint. Services depend on it
// instead of *gorm.DB directly so domain tests can swap in a fake that
// runs the closure without a database. *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Actor is the authenticated identity attributed to movements and sales.
// It comes from the auth middleware; services trust it as-is.
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  model.Role
}

func (a Actor) ref() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}
