package services

import (
	"testing"

	"dentalmarket/internal/database"
	"dentalmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrderDB, OrderDatabase'in bellek içi implementasyonu.
type fakeOrderDB struct {
	products map[int]*models.Product
	orders   []*models.Order
	nextID   int
}

func newFakeOrderDB(products ...*models.Product) *fakeOrderDB {
	db := &fakeOrderDB{products: map[int]*models.Product{}, nextID: 1}
	for _, p := range products {
		db.products[p.ID] = p
	}
	return db
}

func (f *fakeOrderDB) GetProductByID(id int) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeOrderDB) CreateOrder(order *models.Order) error {
	order.ID = f.nextID
	f.nextID++
	order.Status = models.OrderStatusPending
	order.OrderNumber = "ORD-TEST"
	stored := *order
	f.orders = append(f.orders, &stored)
	return nil
}

func (f *fakeOrderDB) FindPendingOrderByFingerprint(userID int, fingerprint string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == models.OrderStatusPending && o.Fingerprint == fingerprint {
			return o, nil
		}
	}
	return nil, database.ErrOrderNotFound
}

func validCustomer() models.CustomerInfo {
	return models.CustomerInfo{
		Name:    "Maria Santos",
		Address: "123 Rizal St, Manila",
		Mobile:  "09171234567",
		ZipCode: "1000",
		Email:   "maria@example.com",
	}
}

func chairProduct() *models.Product {
	return &models.Product{ID: 1, Name: "Dental Chair Model A", Price: 15000000, Stock: 5}
}

func chairLine() models.CartLine {
	return models.CartLine{
		ProductID: 1,
		Name:      "Dental Chair Model A",
		UnitPrice: 15000000,
		Quantity:  1,
		SelectedInclusions: []models.SelectedInclusion{
			{InclusionID: 7, Name: "Warranty", Price: 500000},
		},
	}
}

func TestCreateOrderSnapshotsLinesAndInclusions(t *testing.T) {
	db := newFakeOrderDB(chairProduct())
	svc := NewOrderService(db)

	order, err := svc.CreateOrder([]models.CartLine{chairLine()}, validCustomer(), 42)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 42, order.UserID)
	assert.Equal(t, int64(15500000), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(15000000), order.Items[0].Price)
	assert.Equal(t, 1, order.Items[0].Quantity)
	require.Len(t, order.Items[0].IncludedItems, 1)
	assert.Equal(t, "Warranty", order.Items[0].IncludedItems[0].Name)
	assert.Equal(t, int64(500000), order.Items[0].IncludedItems[0].Price)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc := NewOrderService(newFakeOrderDB())

	_, err := svc.CreateOrder(nil, validCustomer(), 1)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrderMissingCustomerField(t *testing.T) {
	svc := NewOrderService(newFakeOrderDB(chairProduct()))

	info := validCustomer()
	info.Mobile = "   "
	_, err := svc.CreateOrder([]models.CartLine{chairLine()}, info, 1)

	var missingField *MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "mobile", missingField.Field)
}

func TestCreateOrderReportsAllMissingProducts(t *testing.T) {
	db := newFakeOrderDB(chairProduct())
	svc := NewOrderService(db)

	lines := []models.CartLine{
		chairLine(),
		{ProductID: 8, Name: "Deleted A", UnitPrice: 100, Quantity: 1},
		{ProductID: 9, Name: "Deleted B", UnitPrice: 100, Quantity: 1},
	}

	_, err := svc.CreateOrder(lines, validCustomer(), 1)

	var missing *MissingProductsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []int{8, 9}, missing.ProductIDs)

	// Kısmi sipariş oluşmamalı.
	assert.Empty(t, db.orders)
}

func TestCreateOrderUsesQuotedPriceNotCatalogPrice(t *testing.T) {
	product := chairProduct()
	product.Price = 99999999 // katalog fiyatı sepete eklendikten sonra değişmiş
	svc := NewOrderService(newFakeOrderDB(product))

	order, err := svc.CreateOrder([]models.CartLine{chairLine()}, validCustomer(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(15000000), order.Items[0].Price)
	assert.Equal(t, int64(15500000), order.Total)
}

func TestCreateOrderReusesPendingDuplicate(t *testing.T) {
	db := newFakeOrderDB(chairProduct())
	svc := NewOrderService(db)

	first, err := svc.CreateOrder([]models.CartLine{chairLine()}, validCustomer(), 1)
	require.NoError(t, err)

	second, err := svc.CreateOrder([]models.CartLine{chairLine()}, validCustomer(), 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, db.orders, 1)
}

func TestCreateOrderDifferentCartsGetDifferentOrders(t *testing.T) {
	db := newFakeOrderDB(chairProduct())
	svc := NewOrderService(db)

	_, err := svc.CreateOrder([]models.CartLine{chairLine()}, validCustomer(), 1)
	require.NoError(t, err)

	other := chairLine()
	other.Quantity = 2
	_, err = svc.CreateOrder([]models.CartLine{other}, validCustomer(), 1)
	require.NoError(t, err)

	assert.Len(t, db.orders, 2)
}

func TestCartFingerprintIsOrderInsensitive(t *testing.T) {
	a := models.CartLine{ProductID: 1, UnitPrice: 100, Quantity: 1}
	b := models.CartLine{ProductID: 2, UnitPrice: 200, Quantity: 2}

	fp1 := cartFingerprint(1, []models.CartLine{a, b})
	fp2 := cartFingerprint(1, []models.CartLine{b, a})
	assert.Equal(t, fp1, fp2)

	// Farklı kullanıcı farklı parmak izi üretir.
	assert.NotEqual(t, fp1, cartFingerprint(2, []models.CartLine{a, b}))
}
