package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"dentalmarket/internal/models"
)

// Kayıt bulunamadığında dönen hatalar. Çağıranlar errors.Is ile ayırt eder.
var (
	ErrProductNotFound   = errors.New("ürün bulunamadı")
	ErrOrderNotFound     = errors.New("sipariş bulunamadı")
	ErrUserNotFound      = errors.New("kullanıcı bulunamadı")
	ErrQuotationNotFound = errors.New("teklif talebi bulunamadı")
	ErrUsernameTaken     = errors.New("bu kullanıcı adı zaten kayıtlı")
	ErrEmailTaken        = errors.New("bu e-posta adresi zaten kayıtlı")
)

// dbData, JSON dosyasındaki tüm verileri temsil eder.
type dbData struct {
	Products   []models.Product   `json:"products"`
	Users      []models.User      `json:"users"`
	Orders     []models.Order     `json:"orders"`
	Quotations []models.Quotation `json:"quotations"`
}

// JSONDatabase, veritabanı işlemlerini yönetir. Tüm mutasyonlar tek kilit
// altında yapılır ve hemen dosyaya yazılır.
type JSONDatabase struct {
	mu       sync.RWMutex
	data     dbData
	filePath string
}

// NewDatabase, yeni bir JSONDatabase örneği oluşturur ve verileri yükler.
func NewDatabase(filePath string) (*JSONDatabase, error) {
	if filePath == "" {
		filePath = "./data.json"
	}
	db := &JSONDatabase{
		filePath: filePath,
	}
	if err := db.loadData(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *JSONDatabase) loadData() error {
	if _, err := os.Stat(db.filePath); os.IsNotExist(err) {
		db.data = emptyData()
		return db.saveData()
	}

	fileData, err := os.ReadFile(db.filePath)
	if err != nil {
		return err
	}
	// Dosya boşsa hata vermemesi için kontrol
	if len(fileData) == 0 {
		db.data = emptyData()
		return nil
	}

	if err := json.Unmarshal(fileData, &db.data); err != nil {
		return err
	}
	if db.data.Products == nil {
		db.data.Products = []models.Product{}
	}
	if db.data.Users == nil {
		db.data.Users = []models.User{}
	}
	if db.data.Orders == nil {
		db.data.Orders = []models.Order{}
	}
	if db.data.Quotations == nil {
		db.data.Quotations = []models.Quotation{}
	}
	return nil
}

func emptyData() dbData {
	return dbData{
		Products:   []models.Product{},
		Users:      []models.User{},
		Orders:     []models.Order{},
		Quotations: []models.Quotation{},
	}
}

func (db *JSONDatabase) saveData() error {
	data, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(db.filePath, data, 0644)
}

// --- Ürün işlemleri ---

// GetAllProducts, tüm ürünleri döndürür.
func (db *JSONDatabase) GetAllProducts() ([]models.Product, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	products := make([]models.Product, len(db.data.Products))
	copy(products, db.data.Products)
	return products, nil
}

// GetProductByID, belirli bir ID'ye sahip ürünü döndürür.
func (db *JSONDatabase) GetProductByID(id int) (*models.Product, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.findProduct(id)
}

// findProduct, kilit tutulurken ürünü arar.
func (db *JSONDatabase) findProduct(id int) (*models.Product, error) {
	for _, p := range db.data.Products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, ErrProductNotFound
}

// CreateProduct, yeni bir ürün oluşturur ve ek ürünlerine ID atar.
func (db *JSONDatabase) CreateProduct(product *models.Product) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	maxID := 0
	for _, p := range db.data.Products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	product.ID = maxID + 1
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	for i := range product.Inclusions {
		product.Inclusions[i].ID = db.nextInclusionID()
		product.Inclusions[i].ProductID = product.ID
	}

	db.data.Products = append(db.data.Products, *product)
	return db.saveData()
}

// nextInclusionID, tüm ürünlerdeki ek ürünler arasında benzersiz ID üretir.
func (db *JSONDatabase) nextInclusionID() int {
	maxID := 0
	for _, p := range db.data.Products {
		for _, inc := range p.Inclusions {
			if inc.ID > maxID {
				maxID = inc.ID
			}
		}
	}
	return maxID + 1
}

// UpdateProduct, mevcut ürünü günceller. Ek ürün listesi gelenle değiştirilir;
// geçmiş siparişlerdeki kopyalar etkilenmez.
func (db *JSONDatabase) UpdateProduct(product *models.Product) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, p := range db.data.Products {
		if p.ID == product.ID {
			product.CreatedAt = p.CreatedAt
			product.UpdatedAt = time.Now()
			for j := range product.Inclusions {
				if product.Inclusions[j].ID == 0 {
					product.Inclusions[j].ID = db.nextInclusionID()
				}
				product.Inclusions[j].ProductID = product.ID
			}
			db.data.Products[i] = *product
			return db.saveData()
		}
	}
	return ErrProductNotFound
}

// DeleteProduct, ürünü katalogdan kaldırır. Siparişler fiyat ve ek ürün
// kopyaları taşıdığı için geçmiş sipariş verisi etkilenmez.
func (db *JSONDatabase) DeleteProduct(id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, p := range db.data.Products {
		if p.ID == id {
			db.data.Products = append(db.data.Products[:i], db.data.Products[i+1:]...)
			return db.saveData()
		}
	}
	return ErrProductNotFound
}

// --- Kullanıcı işlemleri ---

// CreateUser, yeni bir kullanıcı oluşturur.
func (db *JSONDatabase) CreateUser(user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.data.Users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}

	maxID := 0
	for _, u := range db.data.Users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	user.ID = maxID + 1
	if user.Role == "" {
		user.Role = "customer"
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	db.data.Users = append(db.data.Users, *user)
	return db.saveData()
}

// GetUserByUsername, kullanıcı adına göre kullanıcıyı döndürür.
func (db *JSONDatabase) GetUserByUsername(username string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, u := range db.data.Users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetUserByEmail, e-posta adresine göre kullanıcıyı döndürür.
func (db *JSONDatabase) GetUserByEmail(email string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, u := range db.data.Users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetAllUsers, tüm kullanıcıları döndürür.
func (db *JSONDatabase) GetAllUsers() ([]models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	users := make([]models.User, len(db.data.Users))
	copy(users, db.data.Users)
	return users, nil
}

// DeleteUser, kullanıcıyı siler. Siparişleri tarihsel kayıt olarak kalır.
func (db *JSONDatabase) DeleteUser(userID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, u := range db.data.Users {
		if u.ID == userID {
			db.data.Users = append(db.data.Users[:i], db.data.Users[i+1:]...)
			return db.saveData()
		}
	}
	return ErrUserNotFound
}

// --- Sipariş işlemleri ---

// CreateOrder, siparişi pending durumunda kaydeder ve tüm satır/ek ürün
// kayıtlarına ID atar. Stok burada düşürülmez; stok sadece ödeme
// doğrulandığında düşer.
func (db *JSONDatabase) CreateOrder(order *models.Order) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	maxID := 0
	for _, o := range db.data.Orders {
		if o.ID > maxID {
			maxID = o.ID
		}
	}
	order.ID = maxID + 1
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.OrderNumber == "" {
		order.OrderNumber = generateOrderNumber()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	itemID := db.maxOrderItemID()
	inclusionID := db.maxOrderItemInclusionID()
	for i := range order.Items {
		itemID++
		order.Items[i].ID = itemID
		order.Items[i].OrderID = order.ID
		for j := range order.Items[i].IncludedItems {
			inclusionID++
			order.Items[i].IncludedItems[j].ID = inclusionID
			order.Items[i].IncludedItems[j].OrderItemID = itemID
		}
	}

	db.data.Orders = append(db.data.Orders, *order)
	return db.saveData()
}

func (db *JSONDatabase) maxOrderItemID() int {
	maxID := 0
	for _, o := range db.data.Orders {
		for _, item := range o.Items {
			if item.ID > maxID {
				maxID = item.ID
			}
		}
	}
	return maxID
}

func (db *JSONDatabase) maxOrderItemInclusionID() int {
	maxID := 0
	for _, o := range db.data.Orders {
		for _, item := range o.Items {
			for _, inc := range item.IncludedItems {
				if inc.ID > maxID {
					maxID = inc.ID
				}
			}
		}
	}
	return maxID
}

// GetOrderByID, ID'ye göre sipariş getirir.
func (db *JSONDatabase) GetOrderByID(orderID int) (*models.Order, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, order := range db.data.Orders {
		if order.ID == orderID {
			o := order
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

// GetOrdersByUserID, kullanıcının siparişlerini getirir (en yeni önce).
func (db *JSONDatabase) GetOrdersByUserID(userID int) ([]models.Order, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var userOrders []models.Order
	for _, order := range db.data.Orders {
		if order.UserID == userID {
			userOrders = append(userOrders, order)
		}
	}

	sort.Slice(userOrders, func(i, j int) bool {
		return userOrders[i].CreatedAt.After(userOrders[j].CreatedAt)
	})

	return userOrders, nil
}

// GetAllOrders, tüm siparişleri getirir (en yeni önce).
func (db *JSONDatabase) GetAllOrders() ([]models.Order, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	orders := make([]models.Order, len(db.data.Orders))
	copy(orders, db.data.Orders)

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// FindPendingOrderByFingerprint, aynı kullanıcı ve aynı sepet içeriği için
// bekleyen bir sipariş varsa onu döndürür. Checkout tekrarlarında ikinci
// bir sipariş oluşmasını önler.
func (db *JSONDatabase) FindPendingOrderByFingerprint(userID int, fingerprint string) (*models.Order, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, order := range db.data.Orders {
		if order.UserID == userID && order.Status == models.OrderStatusPending && order.Fingerprint == fingerprint {
			o := order
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

// MarkOrderPaid, pending -> paid geçişini ve stok düşümünü tek kilit altında
// tek koşullu işlem olarak yapar. Sipariş zaten paid ise hiçbir şeye
// dokunmaz ve transitioned=false döner; tekrarlanan doğrulama çağrıları
// stoğu ikinci kez düşüremez.
func (db *JSONDatabase) MarkOrderPaid(orderID int, info models.PaymentInfo) (order *models.Order, transitioned bool, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.data.Orders {
		if db.data.Orders[i].ID != orderID {
			continue
		}

		if db.data.Orders[i].Status != models.OrderStatusPending {
			o := db.data.Orders[i]
			log.Printf("JSONDatabase.MarkOrderPaid - Order %d already %s, no-op", orderID, o.Status)
			return &o, false, nil
		}

		db.data.Orders[i].Status = models.OrderStatusPaid
		db.data.Orders[i].PaymentInfo = info
		db.data.Orders[i].UpdatedAt = time.Now()

		// Geçiş bu çağrıda gerçekleşti; stoklar tam bir kez düşer.
		db.deductStockFromOrder(&db.data.Orders[i])

		if err := db.saveData(); err != nil {
			return nil, false, err
		}

		o := db.data.Orders[i]
		return &o, true, nil
	}

	return nil, false, ErrOrderNotFound
}

// deductStockFromOrder, siparişteki her satır için ürün stoğunu satırın
// adedi kadar düşürür. Kilit tutulurken çağrılır.
func (db *JSONDatabase) deductStockFromOrder(order *models.Order) {
	for _, item := range order.Items {
		for i, product := range db.data.Products {
			if product.ID == item.ProductID {
				db.data.Products[i].Stock -= item.Quantity
				log.Printf("JSONDatabase.deductStockFromOrder - %s stock -%d (new: %d)",
					product.Name, item.Quantity, db.data.Products[i].Stock)
				break
			}
		}
	}
}

// restoreStockFromOrder, iptal edilen siparişin stoklarını geri ekler.
// Kilit tutulurken çağrılır.
func (db *JSONDatabase) restoreStockFromOrder(order *models.Order) {
	for _, item := range order.Items {
		for i, product := range db.data.Products {
			if product.ID == item.ProductID {
				db.data.Products[i].Stock += item.Quantity
				log.Printf("JSONDatabase.restoreStockFromOrder - %s stock +%d", product.Name, item.Quantity)
				break
			}
		}
	}
}

// UpdateOrderStatus, idari durum geçişlerini uygular. Ödemesi alınmış bir
// sipariş iptal edilirse stoklar geri eklenir; pending iptalinde stok hiç
// düşmediği için dokunulmaz.
func (db *JSONDatabase) UpdateOrderStatus(orderID int, status string, adminNotes string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, order := range db.data.Orders {
		if order.ID == orderID {
			oldStatus := order.Status
			db.data.Orders[i].Status = status
			if adminNotes != "" {
				db.data.Orders[i].AdminNotes = adminNotes
			}
			db.data.Orders[i].UpdatedAt = time.Now()

			if oldStatus != models.OrderStatusPending && oldStatus != models.OrderStatusCancelled &&
				status == models.OrderStatusCancelled {
				db.restoreStockFromOrder(&db.data.Orders[i])
			}

			return db.saveData()
		}
	}
	return ErrOrderNotFound
}

// DeleteOrder, siparişi satırları ve ek ürün kopyalarıyla birlikte siler.
func (db *JSONDatabase) DeleteOrder(orderID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, order := range db.data.Orders {
		if order.ID == orderID {
			db.data.Orders = append(db.data.Orders[:i], db.data.Orders[i+1:]...)
			return db.saveData()
		}
	}
	return ErrOrderNotFound
}

// --- Teklif talebi işlemleri ---

// CreateQuotation, yeni bir teklif talebi kaydeder.
func (db *JSONDatabase) CreateQuotation(quotation *models.Quotation) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	maxID := 0
	for _, q := range db.data.Quotations {
		if q.ID > maxID {
			maxID = q.ID
		}
	}
	quotation.ID = maxID + 1
	if quotation.Status == "" {
		quotation.Status = "new"
	}
	quotation.CreatedAt = time.Now()

	db.data.Quotations = append(db.data.Quotations, *quotation)
	return db.saveData()
}

// GetAllQuotations, tüm teklif taleplerini getirir (en yeni önce).
func (db *JSONDatabase) GetAllQuotations() ([]models.Quotation, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	quotations := make([]models.Quotation, len(db.data.Quotations))
	copy(quotations, db.data.Quotations)

	sort.Slice(quotations, func(i, j int) bool {
		return quotations[i].CreatedAt.After(quotations[j].CreatedAt)
	})

	return quotations, nil
}

// UpdateQuotationStatus, teklif talebinin durumunu günceller.
func (db *JSONDatabase) UpdateQuotationStatus(quotationID int, status string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, q := range db.data.Quotations {
		if q.ID == quotationID {
			db.data.Quotations[i].Status = status
			return db.saveData()
		}
	}
	return ErrQuotationNotFound
}

// generateOrderNumber, benzersiz sipariş numarası oluşturur.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s", time.Now().Format("20060102-150405.000"))
}
