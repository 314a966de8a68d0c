package repository

import (
	"go-pos-kardex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	// Writes run on the caller's transaction: a sale header, its items
	// and the final total must commit or roll back as one unit.
	CreateHeader(tx *gorm.DB, sale *model.Sale) error
	CreateItem(tx *gorm.DB, item *model.SaleItem) error
	UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total decimal.Decimal) error

	FindAll() ([]model.Sale, error)
	FindByFolio(folio string) (*model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) CreateHeader(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) CreateItem(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Create(item).Error
}

func (r *saleRepo) UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.Sale{}).
		Where("id = ?", saleID).
		Update("total", total).Error
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items.Product").Preload("User").
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByFolio(folio string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items.Product").Preload("User").
		First(&sale, "folio = ?", folio).Error
	return &sale, err
}
