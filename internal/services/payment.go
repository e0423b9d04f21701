package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dentalmarket/internal/models"
	"dentalmarket/internal/paymongo"
)

// ErrPaymentNotCompleted, sağlayıcı ödemeyi henüz başarılı saymadığında
// döner; siparişe dokunulmaz.
var ErrPaymentNotCompleted = errors.New("ödeme henüz tamamlanmadı")

// ProviderError, dış ödeme sağlayıcısından kaynaklanan hataları sarar.
// Sipariş pending kalır ve işlem tekrar denenebilir.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ödeme sağlayıcısı hatası (%s): %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider, hosted checkout sağlayıcısını tanımlar.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params paymongo.CheckoutSessionParams) (*paymongo.CheckoutSession, error)
	VerifyPayment(ctx context.Context, paymentIntentID string) (bool, error)
}

// PaymentDatabase, PaymentService'in ihtiyaç duyduğu veritabanı işlemlerini
// tanımlar.
type PaymentDatabase interface {
	GetOrderByID(orderID int) (*models.Order, error)
	MarkOrderPaid(orderID int, info models.PaymentInfo) (*models.Order, bool, error)
}

// PaymentService, siparişi hosted checkout oturumuna çevirir ve dönüşte
// ödemeyi doğrulayıp sonuçlarını uygular.
type PaymentService struct {
	db       PaymentDatabase
	provider Provider
	baseURL  string
	currency string
}

// NewPaymentService, yeni bir PaymentService örneği oluşturur.
func NewPaymentService(db PaymentDatabase, provider Provider, baseURL, currency string) *PaymentService {
	return &PaymentService{
		db:       db,
		provider: provider,
		baseURL:  baseURL,
		currency: currency,
	}
}

// CreateCheckoutSession, siparişi sağlayıcının satır kalemi biçimine çevirir
// ve hosted checkout oturumu açarak yönlendirme URL'sini döndürür. Her ürün
// bir satır kalemi, her ek ürün kopyası ana ürünün adediyle ayrı bir satır
// kalemi olur. Sağlayıcı hatasında sipariş pending kalır.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, order *models.Order) (string, error) {
	params := paymongo.CheckoutSessionParams{
		Description: fmt.Sprintf("Order #%d", order.ID),
		LineItems:   s.buildLineItems(order),
		Billing: paymongo.Billing{
			Name:  order.CustomerName,
			Email: order.Email,
			Phone: order.CustomerMobile,
		},
		PaymentMethodTypes: []string{"gcash", "card"},
		// Sağlayıcı {CHECKOUT_SESSION_ID} yer tutucusunu doldurur; order_id
		// dönüş yolculuğunu bu siparişe bağlar.
		SuccessURL: fmt.Sprintf("%s/payment/verify?payment_intent_id={CHECKOUT_SESSION_ID}&order_id=%d", s.baseURL, order.ID),
		CancelURL:  s.baseURL + "/cart",
		Metadata: map[string]string{
			"order_id": fmt.Sprintf("%d", order.ID),
			"user_id":  fmt.Sprintf("%d", order.UserID),
		},
	}

	session, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		log.Printf("PaymentService.CreateCheckoutSession - Provider error for order %d: %v", order.ID, err)
		return "", &ProviderError{Op: "create_checkout_session", Err: err}
	}

	log.Printf("PaymentService.CreateCheckoutSession - Order %d -> session %s", order.ID, session.ID)
	return session.CheckoutURL, nil
}

// buildLineItems, sipariş satırlarını ve ek ürün kopyalarını sağlayıcı
// satır kalemlerine açar.
func (s *PaymentService) buildLineItems(order *models.Order) []paymongo.LineItem {
	var lineItems []paymongo.LineItem
	for _, item := range order.Items {
		var images []string
		if item.Image != "" {
			images = []string{s.baseURL + item.Image}
		}

		lineItems = append(lineItems, paymongo.LineItem{
			Amount:      item.Price,
			Currency:    s.currency,
			Description: item.Name,
			Images:      images,
			Name:        item.Name,
			Quantity:    item.Quantity,
		})

		for _, inc := range item.IncludedItems {
			lineItems = append(lineItems, paymongo.LineItem{
				Amount:      inc.Price,
				Currency:    s.currency,
				Description: fmt.Sprintf("%s için dahil edilen ürün", item.Name),
				Images:      images,
				Name:        inc.Name,
				Quantity:    item.Quantity,
			})
		}
	}
	return lineItems
}

// ReconcileResult, ödeme mutabakatının sonucunu temsil eder.
type ReconcileResult struct {
	OrderID      int    `json:"order_id"`
	Status       string `json:"status"`
	Transitioned bool   `json:"-"`
}

// Reconcile, sağlayıcıdan ödemeyi doğrular; başarılıysa siparişi paid
// durumuna geçirir ve stokları düşürür. Geçiş ve stok düşümü veritabanında
// tek koşullu işlemdir: sipariş zaten paid ise çağrı başarılı bir no-op
// olarak döner ve stok ikinci kez düşmez.
func (s *PaymentService) Reconcile(ctx context.Context, paymentIntentID string, orderID int) (*ReconcileResult, error) {
	verified, err := s.provider.VerifyPayment(ctx, paymentIntentID)
	if err != nil {
		return nil, &ProviderError{Op: "verify_payment", Err: err}
	}
	if !verified {
		log.Printf("PaymentService.Reconcile - Order %d: payment %s not completed, leaving order untouched",
			orderID, paymentIntentID)
		return nil, ErrPaymentNotCompleted
	}

	info := models.PaymentInfo{
		Status:          models.OrderStatusPaid,
		PaymentIntentID: paymentIntentID,
		VerifiedAt:      time.Now(),
	}

	order, transitioned, err := s.db.MarkOrderPaid(orderID, info)
	if err != nil {
		return nil, err
	}

	if transitioned {
		log.Printf("PaymentService.Reconcile - Order %d paid, stock decremented", orderID)
	} else {
		log.Printf("PaymentService.Reconcile - Order %d already %s, repeat verification is a no-op",
			orderID, order.Status)
	}

	return &ReconcileResult{
		OrderID:      order.ID,
		Status:       order.Status,
		Transitioned: transitioned,
	}, nil
}
