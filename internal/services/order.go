package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"dentalmarket/internal/database"
	"dentalmarket/internal/models"
	"dentalmarket/internal/pricing"
)

// ErrEmptyCart, boş sepetle sipariş oluşturma denemesinde döner.
var ErrEmptyCart = errors.New("sepet boş")

// MissingFieldError, zorunlu bir müşteri alanının boş olduğunu bildirir.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("zorunlu alan eksik: %s", e.Field)
}

// MissingProductsError, sepetteki bazı ürünlerin artık katalogda olmadığını
// bildirir. Eksik ürünlerin tamamını listeler.
type MissingProductsError struct {
	ProductIDs []int
}

func (e *MissingProductsError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("şu ürünler artık mevcut değil: %s", strings.Join(ids, ", "))
}

// OrderDatabase, OrderService'in ihtiyaç duyduğu veritabanı işlemlerini tanımlar.
type OrderDatabase interface {
	GetProductByID(id int) (*models.Product, error)
	CreateOrder(order *models.Order) error
	FindPendingOrderByFingerprint(userID int, fingerprint string) (*models.Order, error)
}

// OrderService, sepet satırlarından sipariş oluşturur.
type OrderService struct {
	db OrderDatabase
}

// NewOrderService, yeni bir OrderService örneği oluşturur.
func NewOrderService(db OrderDatabase) *OrderService {
	return &OrderService{db: db}
}

// CreateOrder, sepet satırlarını doğrular ve pending durumunda bir sipariş
// kaydeder. Doğrulama sırası: boş sepet, boş müşteri alanları, ürün
// varlığı. Herhangi bir ürün eksikse hiçbir kayıt oluşturulmaz ve eksik
// ürünlerin tamamı raporlanır. Birim fiyatlar katalogdan değil, müşteriye
// teklif edilen sepet satırlarından kopyalanır.
func (s *OrderService) CreateOrder(lines []models.CartLine, info models.CustomerInfo, userID int) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateCustomerInfo(info); err != nil {
		return nil, err
	}

	// Tüm satırların ürünleri hala katalogda mı? Eksikleri topla.
	var missing []int
	for _, line := range lines {
		if _, err := s.db.GetProductByID(line.ProductID); err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				missing = append(missing, line.ProductID)
				continue
			}
			return nil, err
		}
	}
	if len(missing) > 0 {
		return nil, &MissingProductsError{ProductIDs: missing}
	}

	// Aynı kullanıcı + aynı sepet içeriği için bekleyen sipariş varsa onu
	// kullan; checkout tekrarı ikinci bir sipariş yaratmasın.
	fingerprint := cartFingerprint(userID, lines)
	if existing, err := s.db.FindPendingOrderByFingerprint(userID, fingerprint); err == nil {
		log.Printf("OrderService.CreateOrder - Reusing pending order %d for user %d", existing.ID, userID)
		return existing, nil
	}

	order := &models.Order{
		UserID:          userID,
		CustomerName:    info.Name,
		CustomerAddress: info.Address,
		CustomerMobile:  info.Mobile,
		CustomerZipCode: info.ZipCode,
		Email:           info.Email,
		Items:           buildOrderItems(lines),
		Total:           pricing.CartTotal(lines),
		Status:          models.OrderStatusPending,
		Fingerprint:     fingerprint,
	}

	if err := s.db.CreateOrder(order); err != nil {
		return nil, err
	}

	log.Printf("OrderService.CreateOrder - Order %d created for user %d, total: %s",
		order.ID, userID, pricing.FormatAmount(order.Total))
	return order, nil
}

func validateCustomerInfo(info models.CustomerInfo) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", info.Name},
		{"address", info.Address},
		{"mobile", info.Mobile},
		{"zip_code", info.ZipCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}

// buildOrderItems, sepet satırlarını fiyat ve ek ürün kopyalarıyla sipariş
// satırlarına çevirir. Ek ürünler referans değil kopyadır; katalogdaki ek
// ürünler sonradan değişse de sipariş kaydı değişmez.
func buildOrderItems(lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		item := models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Image:     line.Image,
			Quantity:  line.Quantity,
		}
		for _, inc := range line.SelectedInclusions {
			item.IncludedItems = append(item.IncludedItems, models.OrderItemInclusion{
				Name:        inc.Name,
				Description: inc.Description,
				Price:       inc.Price,
			})
		}
		items[i] = item
	}
	return items
}

// cartFingerprint, kullanıcı ve normalize edilmiş sepet içeriği üzerinden
// deterministik bir özet üretir.
func cartFingerprint(userID int, lines []models.CartLine) string {
	sorted := make([]models.CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID < sorted[j].ProductID
	})

	h := sha256.New()
	fmt.Fprintf(h, "user:%d", userID)
	for _, line := range sorted {
		fmt.Fprintf(h, "|p:%d,q:%d,u:%d", line.ProductID, line.Quantity, line.UnitPrice)
		incs := make([]models.SelectedInclusion, len(line.SelectedInclusions))
		copy(incs, line.SelectedInclusions)
		sort.Slice(incs, func(i, j int) bool {
			return incs[i].InclusionID < incs[j].InclusionID
		})
		for _, inc := range incs {
			fmt.Fprintf(h, ";i:%d,ip:%d", inc.InclusionID, inc.Price)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
