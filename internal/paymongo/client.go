// Package paymongo, PayMongo hosted checkout API'si için istemcidir.
// Dış sağlayıcı güvenilmez ve yavaş kabul edilir; her çağrı context ile
// iptal edilebilir ve her hata açıkça ele alınır.
package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// LineItem, PayMongo'nun beklediği satır kalemi biçimini temsil eder.
// Amount centavo cinsindendir.
type LineItem struct {
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
}

// Billing, ödeme sayfasındaki fatura bilgilerini temsil eder.
type Billing struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// CheckoutSessionParams, checkout oturumu isteğini temsil eder.
type CheckoutSessionParams struct {
	Description        string            `json:"description"`
	LineItems          []LineItem        `json:"line_items"`
	Billing            Billing           `json:"billing"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
	SuccessURL         string            `json:"success_url"`
	CancelURL          string            `json:"cancel_url"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession, sağlayıcının oluşturduğu oturumu temsil eder.
type CheckoutSession struct {
	ID          string
	CheckoutURL string
	Status      string
}

// Client, PayMongo REST API istemcisidir.
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient, yeni bir Client oluşturur.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		apiURL:    apiURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiEnvelope, PayMongo'nun {"data": {...}} zarfını temsil eder.
type apiEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			CheckoutURL string `json:"checkout_url"`
			Status      string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (c *Client) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.secretKey+":"))
}

// CreateCheckoutSession, hosted checkout oturumu oluşturur ve yönlendirme
// URL'sini döndürür.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("paymongo secret key ayarlanmamış")
	}

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": params,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/checkout_sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader())

	envelope, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("checkout oturumu oluşturulamadı: %s", envelope.firstErrorDetail())
	}

	log.Printf("Client.CreateCheckoutSession - Session created: %s (%s)",
		envelope.Data.ID, envelope.Data.Attributes.Status)

	return &CheckoutSession{
		ID:          envelope.Data.ID,
		CheckoutURL: envelope.Data.Attributes.CheckoutURL,
		Status:      envelope.Data.Attributes.Status,
	}, nil
}

// VerifyPayment, ödeme oturumunun başarıyla tamamlanıp tamamlanmadığını
// sağlayıcıdan doğrular. Başarı dışındaki her durum false döner.
func (c *Client) VerifyPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	if c.secretKey == "" {
		return false, fmt.Errorf("paymongo secret key ayarlanmamış")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/payment_intents/"+paymentIntentID, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", c.authHeader())

	envelope, status, err := c.do(req)
	if err != nil {
		return false, err
	}
	if status < 200 || status >= 300 {
		return false, fmt.Errorf("ödeme doğrulanamadı: %s", envelope.firstErrorDetail())
	}
	if envelope.Data.ID == "" {
		return false, fmt.Errorf("sağlayıcıdan geçersiz yanıt")
	}

	log.Printf("Client.VerifyPayment - Intent %s status: %s", paymentIntentID, envelope.Data.Attributes.Status)
	return envelope.Data.Attributes.Status == "succeeded", nil
}

func (c *Client) do(req *http.Request) (*apiEnvelope, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sağlayıcıya ulaşılamadı: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("sağlayıcı yanıtı çözülemedi: %w", err)
	}
	return &envelope, resp.StatusCode, nil
}

func (e *apiEnvelope) firstErrorDetail() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Detail
	}
	return "bilinmeyen sağlayıcı hatası"
}
