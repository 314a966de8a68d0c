package repository

import (
	"go-pos-kardex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAllActive() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(product *model.Product) error

	// Locking reads: acquire FOR UPDATE on the product row inside the
	// caller's transaction. The lock is held until tx commit/rollback.
	LockBySKU(tx *gorm.DB, sku string) (*model.Product, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)

	// Save inserts or updates the full row on the caller's transaction
	Save(tx *gorm.DB, product *model.Product) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	SetStatus(tx *gorm.DB, id uuid.UUID, status model.ProductStatus, updatedBy string) error

	// Dashboard aggregates over active products
	CountActive() (int64, error)
	TotalStock() (int64, error)
	InventoryValuation() (decimal.Decimal, error)
	LowStockCount() (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAllActive() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").
		Where("status = ?", model.StatusActive).
		Order("sku ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").First(&product, "id = ?", id).Error
	return &product, err
}

// FindBySKU returns the product regardless of status; revival of retired
// SKUs depends on seeing them.
func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) LockBySKU(tx *gorm.DB, sku string) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return tx.Save(product).Error
}

// UpdateStock runs on the caller's tx so the write stays under the row lock
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) SetStatus(tx *gorm.DB, id uuid.UUID, status model.ProductStatus, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).
		Where("status = ?", model.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *productRepo) TotalStock() (int64, error) {
	var total int64
	err := r.db.Model(&model.Product{}).
		Where("status = ?", model.StatusActive).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error
	return total, err
}

func (r *productRepo) InventoryValuation() (decimal.Decimal, error) {
	var valuation decimal.Decimal
	err := r.db.Model(&model.Product{}).
		Where("status = ?", model.StatusActive).
		Select("COALESCE(SUM(stock * cost), 0)").
		Scan(&valuation).Error
	return valuation, err
}

// LowStockCount is the SQL form of model.IsLowStock; keep both in sync.
func (r *productRepo) LowStockCount() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).
		Where("status = ?", model.StatusActive).
		Where("min_stock_level > 0 AND stock <= min_stock_level").
		Count(&count).Error
	return count, err
}
