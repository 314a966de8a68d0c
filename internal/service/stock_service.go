package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/repository"
	"go-pos-kardex/internal/ws"
	"go-pos-kardex/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StockService owns the stock ledger invariant: a product's stock column
// is a cached view of its movement history, every mutation happens under
// a FOR UPDATE row lock, and every successful mutation appends exactly
// one Kardex movement in the same transaction.
type StockService interface {
	AdjustStock(req *AdjustStockRequest, kind model.MovementKind, actor Actor) (*model.Product, bool, error)

	CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(sku string, req *ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(sku string, actor Actor) error
	GetProducts() ([]model.Product, error)
	GetProductBySKU(sku string) (*model.Product, error)

	GetMovements(actor Actor) ([]model.Movement, error)

	CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error)
	GetCategories() ([]model.Category, error)
}

// AdjustStockRequest uses the wire field names the frontend sends.
type AdjustStockRequest struct {
	SKU      string `json:"SKU" validate:"required"`
	Quantity int    `json:"Cantidad"`
}

type ProductRequest struct {
	SKU           string          `json:"SKU" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Cost          decimal.Decimal `json:"cost" validate:"decimal_gte0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
	CategoryID    string          `json:"category_id"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type stockService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	categoryRepo repository.CategoryRepository
	db           TxRunner
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewStockService(
	pRepo repository.ProductRepository,
	mRepo repository.MovementRepository,
	cRepo repository.CategoryRepository,
	db TxRunner,
	hub *ws.Hub,
	log *logrus.Logger,
) StockService {
	return &stockService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		categoryRepo: cRepo,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

// AdjustStock moves stock in or out of a single product. The row lock is
// taken by SKU and held until commit, so concurrent adjustments to the
// same product serialize and can never drive stock below zero.
func (s *stockService) AdjustStock(req *AdjustStockRequest, kind model.MovementKind, actor Actor) (*model.Product, bool, error) {
	if kind != model.KindStockIn && kind != model.KindStockOut {
		return nil, false, fmt.Errorf("unsupported adjustment kind %q", kind)
	}
	// Reject before any lock is taken
	if req.Quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}
	if req.SKU == "" {
		return nil, false, ErrProductNotFound
	}

	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.productRepo.LockBySKU(tx, req.SKU)
		if err != nil || !locked.Active() {
			return ErrProductNotFound
		}

		newStock := locked.Stock
		switch kind {
		case model.KindStockIn:
			newStock += req.Quantity
		case model.KindStockOut:
			if locked.Stock < req.Quantity {
				return &InsufficientStockError{SKU: locked.SKU, Available: locked.Stock}
			}
			newStock -= req.Quantity
		}

		if err := s.productRepo.UpdateStock(tx, locked.ID, newStock, actor.ID.String()); err != nil {
			return err
		}

		if err := s.record(tx, kind, &locked.ID, req.Quantity, actor); err != nil {
			return err
		}

		locked.Stock = newStock
		product = locked
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	lowStock := model.IsLowStock(product.MinStockLevel, product.Stock)

	s.broadcast("stock_update", map[string]interface{}{
		"action":    string(kind),
		"sku":       product.SKU,
		"name":      product.Name,
		"quantity":  req.Quantity,
		"new_stock": product.Stock,
		"low_stock": lowStock,
		"by":        actor.Email,
	})
	if lowStock {
		s.broadcast("low_stock_alert", map[string]interface{}{
			"sku":       product.SKU,
			"name":      product.Name,
			"stock":     product.Stock,
			"min_level": product.MinStockLevel,
		})
	}

	return product, lowStock, nil
}

// record appends a Kardex movement on the caller's transaction. Pure
// append; business rules are the caller's job.
func (s *stockService) record(tx *gorm.DB, kind model.MovementKind, productID *uuid.UUID, quantity int, actor Actor) error {
	return s.movementRepo.Create(tx, &model.Movement{
		BaseModel: model.BaseModel{CreatedBy: actor.ID.String(), UpdatedBy: actor.ID.String()},
		Kind:      kind,
		Quantity:  quantity,
		ProductID: productID,
		UserID:    actor.ref(),
	})
}

// CreateProduct creates a product, or revives the retired product that
// holds the same SKU. Either way it emits a CREATED movement carrying
// the stock at that instant.
func (s *stockService) CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, &ValidationError{Field: first.FailedField, Tag: first.Tag}
	}

	existing, err := s.productRepo.FindBySKU(req.SKU)
	if err == nil && existing.Active() {
		return nil, ErrSKUExists
	}

	categoryID := s.resolveCategory(req.CategoryID)

	var product *model.Product
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err == nil {
			// Retired SKU: revive in place instead of duplicating the row
			existing.Status = model.StatusActive
			existing.Name = req.Name
			existing.Description = req.Description
			existing.Cost = req.Cost
			existing.Stock = req.Stock
			existing.MinStockLevel = req.MinStockLevel
			existing.CategoryID = categoryID
			existing.UpdatedBy = actor.ID.String()
			if err := s.productRepo.Save(tx, existing); err != nil {
				return err
			}
			product = existing
		} else {
			product = &model.Product{
				SKU:           req.SKU,
				Name:          req.Name,
				Description:   req.Description,
				Cost:          req.Cost,
				Stock:         req.Stock,
				MinStockLevel: req.MinStockLevel,
				Status:        model.StatusActive,
				CategoryID:    categoryID,
			}
			product.CreatedBy = actor.ID.String()
			product.UpdatedBy = actor.ID.String()
			if err := s.productRepo.Save(tx, product); err != nil {
				return err
			}
		}

		return s.record(tx, model.KindCreated, &product.ID, product.Stock, actor)
	})
	if txErr != nil {
		// A concurrent create of the same SKU can slip past the pre-check
		// above; the unique index catches it and it maps to the same error.
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUExists
		}
		return nil, txErr
	}

	s.broadcast("stock_update", map[string]interface{}{
		"action": "product_created",
		"sku":    product.SKU,
		"name":   product.Name,
		"stock":  product.Stock,
		"by":     actor.Email,
	})

	return product, nil
}

// UpdateProduct edits catalog fields. Stock is deliberately untouched:
// every stock change goes through AdjustStock or RegisterSale so the
// Kardex stays complete.
func (s *stockService) UpdateProduct(sku string, req *ProductRequest, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, &ValidationError{Field: first.FailedField, Tag: first.Tag}
	}

	categoryID := s.resolveCategory(req.CategoryID)

	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.productRepo.LockBySKU(tx, sku)
		if err != nil || !locked.Active() {
			return ErrProductNotFound
		}

		locked.Name = req.Name
		locked.Description = req.Description
		locked.Cost = req.Cost
		locked.MinStockLevel = req.MinStockLevel
		locked.CategoryID = categoryID
		locked.UpdatedBy = actor.ID.String()

		if err := s.productRepo.Save(tx, locked); err != nil {
			return err
		}
		product = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct retires the product (never a physical delete: movements
// and sale items keep referencing it) and emits a DELETED movement with
// the stock at deletion time.
func (s *stockService) DeleteProduct(sku string, actor Actor) error {
	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.productRepo.LockBySKU(tx, sku)
		if err != nil || !locked.Active() {
			return ErrProductNotFound
		}

		if err := s.productRepo.SetStatus(tx, locked.ID, model.StatusRetired, actor.ID.String()); err != nil {
			return err
		}

		product = locked
		return s.record(tx, model.KindDeleted, &locked.ID, locked.Stock, actor)
	})
	if err != nil {
		return err
	}

	s.broadcast("stock_update", map[string]interface{}{
		"action": "product_deleted",
		"sku":    product.SKU,
		"name":   product.Name,
		"by":     actor.Email,
	})

	return nil
}

func (s *stockService) GetProducts() ([]model.Product, error) {
	return s.productRepo.FindAllActive()
}

func (s *stockService) GetProductBySKU(sku string) (*model.Product, error) {
	product, err := s.productRepo.FindBySKU(sku)
	if err != nil || !product.Active() {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetMovements is role-scoped: operators see their own history,
// superadmins see everything.
func (s *stockService) GetMovements(actor Actor) ([]model.Movement, error) {
	if actor.Role == model.RoleSuperadmin {
		return s.movementRepo.FindAll()
	}
	return s.movementRepo.FindByUser(actor.ID)
}

func (s *stockService) CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, &ValidationError{Field: first.FailedField, Tag: first.Tag}
	}

	if _, err := s.categoryRepo.FindByName(req.Name); err == nil {
		return nil, ErrCategoryExists
	}

	category := &model.Category{Name: req.Name, Description: req.Description}
	category.CreatedBy = actor.ID.String()
	category.UpdatedBy = actor.ID.String()
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *stockService) GetCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

// resolveCategory maps a client-supplied category id to a reference.
// Unknown or malformed ids are dropped, not rejected: a bad category
// reference never blocks a product save.
func (s *stockService) resolveCategory(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithError(err).Warn("category lookup failed, dropping reference")
		}
		return nil
	}
	return &id
}

// broadcast pushes a realtime event to connected dashboards. Fire and
// forget: a sale must not fail because a websocket write did.
func (s *stockService) broadcast(event string, payload map[string]interface{}) {
	if s.wsHub == nil {
		return
	}
	payload["type"] = event
	msg, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).Warn("failed to marshal ws payload")
		return
	}
	go func() {
		s.wsHub.Broadcast <- msg
	}()
}
