package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/repository"
	"go-pos-kardex/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// How many times a sale is retried when the generated folio collides.
// Collisions are already negligible (unix time + random suffix behind a
// unique index); past this we surface ErrFolioCollision as retryable.
const maxFolioAttempts = 3

// SaleService materializes point-of-sale transactions: one atomic
// transaction spanning the sale header, every line item, every stock
// decrement and every Kardex movement. Either all of it commits or none
// of it is observable.
type SaleService interface {
	RegisterSale(req *RegisterSaleRequest, actor Actor) (*Receipt, error)
	GetSales() ([]model.Sale, error)
	GetSale(folio string) (*model.Sale, error)
}

// RegisterSaleRequest uses the wire field names the frontend sends.
// Total is advisory/display-only: the persisted total is always
// recomputed from line subtotals server-side.
type RegisterSaleRequest struct {
	Items []SaleItemRequest `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

type SaleItemRequest struct {
	ProductID string          `json:"id_producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio"`
}

// Receipt is the human-facing projection handed back to the cashier.
type Receipt struct {
	Folio   string          `json:"folio"`
	Date    string          `json:"fecha"`
	Cashier string          `json:"cajero"`
	Items   []ReceiptItem   `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

type ReceiptItem struct {
	Product   string          `json:"producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unit"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type saleService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	saleRepo     repository.SaleRepository
	db           TxRunner
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewSaleService(
	pRepo repository.ProductRepository,
	mRepo repository.MovementRepository,
	sRepo repository.SaleRepository,
	db TxRunner,
	hub *ws.Hub,
	log *logrus.Logger,
) SaleService {
	return &saleService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		saleRepo:     sRepo,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

func (s *saleService) RegisterSale(req *RegisterSaleRequest, actor Actor) (*Receipt, error) {
	// Everything rejectable without touching a row is rejected before
	// the transaction opens.
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return nil, ErrInvalidPrice
		}
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		productIDs[i] = id
	}

	var receipt *Receipt
	for attempt := 0; attempt < maxFolioAttempts; attempt++ {
		folio := newFolio()
		err := s.registerWithFolio(req, productIDs, folio, actor, &receipt)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.WithField("folio", folio).Warn("folio collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.broadcast("sale_registered", map[string]interface{}{
			"folio": receipt.Folio,
			"total": receipt.Total,
			"items": len(receipt.Items),
			"by":    actor.Email,
		})
		return receipt, nil
	}
	return nil, ErrFolioCollision
}

func (s *saleService) registerWithFolio(req *RegisterSaleRequest, productIDs []uuid.UUID, folio string, actor Actor, out **Receipt) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		sale := &model.Sale{
			Folio:  folio,
			Total:  decimal.Zero, // provisional, recomputed below
			UserID: actor.ref(),
		}
		sale.CreatedBy = actor.ID.String()
		sale.UpdatedBy = actor.ID.String()
		if err := s.saleRepo.CreateHeader(tx, sale); err != nil {
			return err
		}

		// Lock every referenced product in canonical (id-sorted) order
		// so two concurrent sales over overlapping products can never
		// deadlock, whatever order their carts were built in.
		locked, err := s.lockProducts(tx, productIDs)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]ReceiptItem, 0, len(req.Items))

		// Lines are processed (and persisted) in submitted order.
		for i, item := range req.Items {
			product := locked[productIDs[i]]

			if product.Stock < item.Quantity {
				return &InsufficientStockError{SKU: product.SKU, Available: product.Stock}
			}
			product.Stock -= item.Quantity
			if err := s.productRepo.UpdateStock(tx, product.ID, product.Stock, actor.ID.String()); err != nil {
				return err
			}

			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			saleItem := &model.SaleItem{
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  subtotal,
			}
			saleItem.CreatedBy = actor.ID.String()
			saleItem.UpdatedBy = actor.ID.String()
			if err := s.saleRepo.CreateItem(tx, saleItem); err != nil {
				return err
			}

			movement := &model.Movement{
				Kind:      model.KindStockOut,
				Quantity:  item.Quantity,
				ProductID: &product.ID,
				UserID:    actor.ref(),
			}
			movement.CreatedBy = actor.ID.String()
			movement.UpdatedBy = actor.ID.String()
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}

			total = total.Add(subtotal)
			items = append(items, ReceiptItem{
				Product:   product.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		// Authoritative total: the sum of subtotals, never req.Total.
		if err := s.saleRepo.UpdateTotal(tx, sale.ID, total); err != nil {
			return err
		}

		*out = &Receipt{
			Folio:   folio,
			Date:    now.Format("02/01/2006 15:04"),
			Cashier: actor.Email,
			Items:   items,
			Total:   total,
		}
		return nil
	})
}

// lockProducts acquires FOR UPDATE on each distinct product, id-sorted.
// Every product must resolve to an active row.
func (s *saleService) lockProducts(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	distinct := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	sort.Slice(distinct, func(i, j int) bool {
		return strings.Compare(distinct[i].String(), distinct[j].String()) < 0
	})

	locked := make(map[uuid.UUID]*model.Product, len(distinct))
	for _, id := range distinct {
		product, err := s.productRepo.LockByID(tx, id)
		if err != nil || !product.Active() {
			return nil, ErrProductNotFound
		}
		locked[id] = product
	}
	return locked, nil
}

func (s *saleService) GetSales() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *saleService) GetSale(folio string) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByFolio(folio)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// newFolio derives a folio from the wall clock plus a random suffix.
// Seconds alone collide under concurrent registration; the suffix plus
// the unique index on sales.folio make a silent duplicate impossible.
func newFolio() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("V-%d-%s", time.Now().Unix(), suffix)
}

func (s *saleService) broadcast(event string, payload map[string]interface{}) {
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
