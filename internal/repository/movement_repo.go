package repository

import (
	"go-pos-kardex/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	// Create appends a Kardex entry on the caller's transaction. Pure
	// append: business validation belongs to the caller, and the row is
	// never touched again.
	Create(tx *gorm.DB, movement *model.Movement) error

	FindAll() ([]model.Movement, error)
	FindByUser(userID uuid.UUID) ([]model.Movement, error)
	FindByProduct(productID uuid.UUID) ([]model.Movement, error)
	CountByKind(kind model.MovementKind) (int64, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(tx *gorm.DB, movement *model.Movement) error {
	return tx.Create(movement).Error
}

func (r *movementRepo) FindAll() ([]model.Movement, error) {
	var movements []model.Movement
	err := r.db.Preload("Product").Preload("User").
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindByUser(userID uuid.UUID) ([]model.Movement, error) {
	var movements []model.Movement
	err := r.db.Preload("Product").Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

// FindByProduct returns the full history oldest-first, the order the
// reconciler replays it in.
func (r *movementRepo) FindByProduct(productID uuid.UUID) ([]model.Movement, error) {
	var movements []model.Movement
	err := r.db.Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) CountByKind(kind model.MovementKind) (int64, error) {
	var count int64
	err := r.db.Model(&model.Movement{}).
		Where("kind = ?", kind).
		Count(&count).Error
	return count, err
}
