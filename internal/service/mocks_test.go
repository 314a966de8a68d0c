package service

import (
	"database/sql"

	"go-pos-kardex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes. Locking methods ignore the tx handle; the
// fake TxRunner below provides the rollback semantics instead.

type mockProductRepo struct {
	store map[uuid.UUID]*model.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{store: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.store[p.ID] = p
	return p
}

func clone(p *model.Product) *model.Product {
	c := *p
	return &c
}

func (m *mockProductRepo) Create(product *model.Product) error {
	m.add(product)
	return nil
}

func (m *mockProductRepo) FindAllActive() ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.store {
		if p.Active() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	if p, ok := m.store[id]; ok {
		return clone(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProductRepo) FindBySKU(sku string) (*model.Product, error) {
	for _, p := range m.store {
		if p.SKU == sku {
			return clone(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProductRepo) Update(product *model.Product) error {
	m.store[product.ID] = clone(product)
	return nil
}

func (m *mockProductRepo) LockBySKU(tx *gorm.DB, sku string) (*model.Product, error) {
	return m.FindBySKU(sku)
}

func (m *mockProductRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return m.FindByID(id)
}

func (m *mockProductRepo) Save(tx *gorm.DB, product *model.Product) error {
	// sku carries a unique index
	for _, p := range m.store {
		if p.SKU == product.SKU && p.ID != product.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.store[product.ID] = clone(product)
	return nil
}

func (m *mockProductRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	p, ok := m.store[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	p.UpdatedBy = updatedBy
	return nil
}

func (m *mockProductRepo) SetStatus(tx *gorm.DB, id uuid.UUID, status model.ProductStatus, updatedBy string) error {
	p, ok := m.store[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	p.UpdatedBy = updatedBy
	return nil
}

func (m *mockProductRepo) CountActive() (int64, error) {
	var n int64
	for _, p := range m.store {
		if p.Active() {
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepo) TotalStock() (int64, error) {
	var n int64
	for _, p := range m.store {
		if p.Active() {
			n += int64(p.Stock)
		}
	}
	return n, nil
}

func (m *mockProductRepo) InventoryValuation() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.store {
		if p.Active() {
			total = total.Add(p.InventoryValue())
		}
	}
	return total, nil
}

func (m *mockProductRepo) LowStockCount() (int64, error) {
	var n int64
	for _, p := range m.store {
		if p.Active() && model.IsLowStock(p.MinStockLevel, p.Stock) {
			n++
		}
	}
	return n, nil
}

type mockCategoryRepo struct {
	store map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{store: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) Create(category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	m.store[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) FindAll() ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.store {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	if c, ok := m.store[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) FindByName(name string) (*model.Category, error) {
	for _, c := range m.store {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockMovementRepo struct {
	movements []model.Movement
}

func (m *mockMovementRepo) Create(tx *gorm.DB, movement *model.Movement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *mockMovementRepo) FindAll() ([]model.Movement, error) {
	out := make([]model.Movement, len(m.movements))
	copy(out, m.movements)
	return out, nil
}

func (m *mockMovementRepo) FindByUser(userID uuid.UUID) ([]model.Movement, error) {
	var out []model.Movement
	for _, mv := range m.movements {
		if mv.UserID != nil && *mv.UserID == userID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *mockMovementRepo) FindByProduct(productID uuid.UUID) ([]model.Movement, error) {
	var out []model.Movement
	for _, mv := range m.movements {
		if mv.ProductID != nil && *mv.ProductID == productID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *mockMovementRepo) CountByKind(kind model.MovementKind) (int64, error) {
	var n int64
	for _, mv := range m.movements {
		if mv.Kind == kind {
			n++
		}
	}
	return n, nil
}

type mockSaleRepo struct {
	headers map[uuid.UUID]*model.Sale
	items   []model.SaleItem
}

func newMockSaleRepo() *mockSaleRepo {
	return &mockSaleRepo{headers: make(map[uuid.UUID]*model.Sale)}
}

func (m *mockSaleRepo) CreateHeader(tx *gorm.DB, sale *model.Sale) error {
	for _, existing := range m.headers {
		if existing.Folio == sale.Folio {
			return gorm.ErrDuplicatedKey
		}
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	c := *sale
	m.headers[sale.ID] = &c
	return nil
}

func (m *mockSaleRepo) CreateItem(tx *gorm.DB, item *model.SaleItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *mockSaleRepo) UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total decimal.Decimal) error {
	sale, ok := m.headers[saleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sale.Total = total
	return nil
}

func (m *mockSaleRepo) FindAll() ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range m.headers {
		sale := *s
		for _, item := range m.items {
			if item.SaleID == sale.ID {
				sale.Items = append(sale.Items, item)
			}
		}
		out = append(out, sale)
	}
	return out, nil
}

func (m *mockSaleRepo) FindByFolio(folio string) (*model.Sale, error) {
	for _, s := range m.headers {
		if s.Folio == folio {
			sale := *s
			sale.Items = m.itemsFor(sale.ID)
			return &sale, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSaleRepo) itemsFor(saleID uuid.UUID) []model.SaleItem {
	var out []model.SaleItem
	for _, item := range m.items {
		if item.SaleID == saleID {
			out = append(out, item)
		}
	}
	return out
}

// fakeTx runs the closure without a database and emulates rollback by
// snapshotting the fakes before the closure and restoring them when it
// fails — the property the real gorm transaction provides.
type fakeTx struct {
	products  *mockProductRepo
	movements *mockMovementRepo
	sales     *mockSaleRepo
}

func (f *fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	productSnap := make(map[uuid.UUID]*model.Product, len(f.products.store))
	for id, p := range f.products.store {
		productSnap[id] = clone(p)
	}
	movementSnap := make([]model.Movement, len(f.movements.movements))
	copy(movementSnap, f.movements.movements)

	var headerSnap map[uuid.UUID]*model.Sale
	var itemSnap []model.SaleItem
	if f.sales != nil {
		headerSnap = make(map[uuid.UUID]*model.Sale, len(f.sales.headers))
		for id, s := range f.sales.headers {
			c := *s
			headerSnap[id] = &c
		}
		itemSnap = make([]model.SaleItem, len(f.sales.items))
		copy(itemSnap, f.sales.items)
	}

	err := fc(nil)
	if err != nil {
		f.products.store = productSnap
		f.movements.movements = movementSnap
		if f.sales != nil {
			f.sales.headers = headerSnap
			f.sales.items = itemSnap
		}
	}
	return err
}
