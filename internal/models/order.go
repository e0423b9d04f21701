package models

import "time"

// Sipariş durumları
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// PaymentInfo, ödeme sağlayıcısından dönen doğrulama bilgilerini temsil eder.
type PaymentInfo struct {
	Status          string    `json:"status,omitempty"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	VerifiedAt      time.Time `json:"verified_at,omitempty"`
}

// Order, siparişi temsil eder. Total sipariş oluşturulurken sabitlenir ve
// sonradan asla yeniden hesaplanmaz.
type Order struct {
	ID              int         `json:"id"`
	OrderNumber     string      `json:"order_number"`
	UserID          int         `json:"user_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerAddress string      `json:"customer_address"`
	CustomerMobile  string      `json:"customer_mobile"`
	CustomerZipCode string      `json:"customer_zip_code"`
	Email           string      `json:"email"`
	Items           []OrderItem `json:"items"`
	Total           int64       `json:"total"`
	Status          string      `json:"status"`
	PaymentInfo     PaymentInfo `json:"payment_info"`
	Fingerprint     string      `json:"fingerprint,omitempty"`
	AdminNotes      string      `json:"admin_notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem, sipariş satırını temsil eder. Price, müşteriye teklif edilen
// birim fiyatın kopyasıdır; katalog fiyatı sonradan değişse de değişmez.
type OrderItem struct {
	ID            int                  `json:"id"`
	OrderID       int                  `json:"order_id"`
	ProductID     int                  `json:"product_id"`
	Name          string               `json:"name"`
	Price         int64                `json:"price"`
	Image         string               `json:"image"`
	Quantity      int                  `json:"quantity"`
	IncludedItems []OrderItemInclusion `json:"included_items,omitempty"`
}

// OrderItemInclusion, sipariş satırına kopyalanan ek ürünü temsil eder.
// Canlı ProductInclusion kayıtlarından bağımsızdır.
type OrderItemInclusion struct {
	ID          int    `json:"id"`
	OrderItemID int    `json:"order_item_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
}

// CustomerInfo, sipariş formundaki teslimat bilgilerini temsil eder.
type CustomerInfo struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Mobile  string `json:"mobile" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Email   string `json:"email"`
}
