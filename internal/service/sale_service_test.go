package service

import (
	"strings"
	"testing"

	"go-pos-kardex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSale(t *testing.T) (SaleService, *mockProductRepo, *mockMovementRepo, *mockSaleRepo) {
	t.Helper()
	products := newMockProductRepo()
	movements := &mockMovementRepo{}
	sales := newMockSaleRepo()
	tx := &fakeTx{products: products, movements: movements, sales: sales}
	svc := NewSaleService(products, movements, sales, tx, nil, testLogger())
	return svc, products, movements, sales
}

func TestRegisterSale(t *testing.T) {
	svc, products, movements, sales := setupSale(t)
	productA := seedProduct(products, "A", 10, 0)
	productB := seedProduct(products, "B", 5, 0)
	actor := testActor()

	receipt, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: productA.ID.String(), Quantity: 2, UnitPrice: decimal.NewFromFloat(10.00)},
			{ProductID: productB.ID.String(), Quantity: 1, UnitPrice: decimal.NewFromFloat(5.00)},
		},
		Total: decimal.NewFromFloat(999.99), // advisory, must be ignored
	}, actor)

	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.True(t, receipt.Total.Equal(decimal.NewFromFloat(25.00)), "total is recomputed server-side, got %s", receipt.Total)
	assert.Equal(t, actor.Email, receipt.Cashier)
	assert.True(t, strings.HasPrefix(receipt.Folio, "V-"))

	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Product A", receipt.Items[0].Product)
	assert.True(t, receipt.Items[0].Subtotal.Equal(decimal.NewFromFloat(20.00)))
	assert.True(t, receipt.Items[1].Subtotal.Equal(decimal.NewFromFloat(5.00)))

	// Exactly 1 header + 2 items + 2 stock-out movements
	require.Len(t, sales.headers, 1)
	for _, header := range sales.headers {
		assert.Equal(t, receipt.Folio, header.Folio)
		assert.True(t, header.Total.Equal(decimal.NewFromFloat(25.00)))
		items := sales.itemsFor(header.ID)
		require.Len(t, items, 2)
		assert.Equal(t, productA.ID, items[0].ProductID)
		assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromFloat(10.00)), "unit price frozen at sale time")
		assert.True(t, items[0].Subtotal.Equal(items[0].UnitPrice.Mul(decimal.NewFromInt(int64(items[0].Quantity)))))
	}
	require.Len(t, movements.movements, 2)
	for _, m := range movements.movements {
		assert.Equal(t, model.KindStockOut, m.Kind)
	}

	storedA, _ := products.FindByID(productA.ID)
	storedB, _ := products.FindByID(productB.ID)
	assert.Equal(t, 8, storedA.Stock)
	assert.Equal(t, 4, storedB.Stock)
}

func TestRegisterSaleEmptyCart(t *testing.T) {
	svc, _, _, sales := setupSale(t)

	_, err := svc.RegisterSale(&RegisterSaleRequest{}, testActor())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, sales.headers)
}

func TestRegisterSaleInvalidLines(t *testing.T) {
	svc, products, _, _ := setupSale(t)
	product := seedProduct(products, "A", 10, 0)

	_, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID.String(), Quantity: 0, UnitPrice: decimal.NewFromInt(1)}},
	}, testActor())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID.String(), Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
	}, testActor())
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{{ProductID: "not-a-uuid", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	}, testActor())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRegisterSaleUnknownProductRollsBack(t *testing.T) {
	svc, products, movements, sales := setupSale(t)
	known := seedProduct(products, "A", 10, 0)

	_, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: known.ID.String(), Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: uuid.New().String(), Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
		},
	}, testActor())

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, sales.headers)
	assert.Empty(t, sales.items)
	assert.Empty(t, movements.movements)

	stored, _ := products.FindByID(known.ID)
	assert.Equal(t, 10, stored.Stock, "no partial sale may be observable")
}

func TestRegisterSaleInsufficientStockRollsBack(t *testing.T) {
	svc, products, movements, sales := setupSale(t)
	productA := seedProduct(products, "A", 10, 0)
	productB := seedProduct(products, "B", 1, 0)

	_, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: productA.ID.String(), Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: productB.ID.String(), Quantity: 3, UnitPrice: decimal.NewFromInt(5)},
		},
	}, testActor())

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "B", insufficient.SKU)
	assert.Equal(t, 1, insufficient.Available)

	// The whole transaction rolls back: no header, no items, no
	// movements, and A's decrement is undone.
	assert.Empty(t, sales.headers)
	assert.Empty(t, sales.items)
	assert.Empty(t, movements.movements)

	storedA, _ := products.FindByID(productA.ID)
	assert.Equal(t, 10, storedA.Stock)
}

func TestRegisterSaleRepeatedProductLine(t *testing.T) {
	svc, products, _, sales := setupSale(t)
	product := seedProduct(products, "A", 5, 0)

	receipt, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: product.ID.String(), Quantity: 3, UnitPrice: decimal.NewFromInt(2)},
			{ProductID: product.ID.String(), Quantity: 2, UnitPrice: decimal.NewFromInt(2)},
		},
	}, testActor())

	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(10)))

	stored, _ := products.FindByID(product.ID)
	assert.Equal(t, 0, stored.Stock)
	require.Len(t, sales.items, 2)
}

func TestRegisterSaleRepeatedLineOverdraw(t *testing.T) {
	svc, products, _, sales := setupSale(t)
	product := seedProduct(products, "A", 5, 0)

	_, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: product.ID.String(), Quantity: 3, UnitPrice: decimal.NewFromInt(2)},
			{ProductID: product.ID.String(), Quantity: 3, UnitPrice: decimal.NewFromInt(2)},
		},
	}, testActor())

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available, "second line sees the first line's decrement")

	stored, _ := products.FindByID(product.ID)
	assert.Equal(t, 5, stored.Stock)
	assert.Empty(t, sales.headers)
}

func TestRegisterSaleRetiredProduct(t *testing.T) {
	svc, products, _, _ := setupSale(t)
	retired := seedProduct(products, "OLD", 10, 0)
	retired.Status = model.StatusRetired

	_, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{{ProductID: retired.ID.String(), Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	}, testActor())

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetSaleByFolio(t *testing.T) {
	svc, products, _, _ := setupSale(t)
	product := seedProduct(products, "A", 10, 0)

	receipt, err := svc.RegisterSale(&RegisterSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID.String(), Quantity: 2, UnitPrice: decimal.NewFromInt(3)}},
	}, testActor())
	require.NoError(t, err)

	sale, err := svc.GetSale(receipt.Folio)
	require.NoError(t, err)
	assert.Equal(t, receipt.Folio, sale.Folio)
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(6)))

	_, err = svc.GetSale("V-0-FFFFFFFF")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestNewFolioShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		folio := newFolio()
		parts := strings.Split(folio, "-")
		require.Len(t, parts, 3)
		assert.Equal(t, "V", parts[0])
		assert.Len(t, parts[2], 8)
		assert.False(t, seen[folio], "random suffix must not repeat across rapid calls")
		seen[folio] = true
	}
}
