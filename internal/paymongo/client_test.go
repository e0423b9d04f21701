package paymongo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/checkout_sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"cs_test_1","attributes":{"checkout_url":"https://checkout.test/cs_test_1","status":"active"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		Description: "Order #1",
		LineItems: []LineItem{
			{Amount: 15000000, Currency: "PHP", Name: "Dental Chair Model A", Quantity: 1},
		},
		Billing:            Billing{Name: "Maria Santos", Email: "maria@example.com"},
		PaymentMethodTypes: []string{"gcash", "card"},
		SuccessURL:         "http://localhost/payment/verify?order_id=1",
		CancelURL:          "http://localhost/cart",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.test/cs_test_1", session.CheckoutURL)
	assert.Equal(t, "active", session.Status)

	// Basic auth: base64("sk_test_abc:")
	assert.Equal(t, "Basic c2tfdGVzdF9hYmM6", gotAuth)

	// İstek {"data":{"attributes":{...}}} zarfında gitmeli.
	data, ok := gotBody["data"].(map[string]interface{})
	require.True(t, ok)
	_, ok = data["attributes"].(map[string]interface{})
	require.True(t, ok)
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"detail":"line_items amount must be at least 100"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line_items amount must be at least 100")
}

func TestVerifyPaymentSucceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents/pi_123", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"pi_123","attributes":{"status":"succeeded"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")

	ok, err := client.VerifyPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPaymentNotSucceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"pi_123","attributes":{"status":"awaiting_payment_method"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")

	ok, err := client.VerifyPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPaymentProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"detail":"No such payment_intent"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")

	_, err := client.VerifyPayment(context.Background(), "pi_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such payment_intent")
}

func TestMissingSecretKey(t *testing.T) {
	client := NewClient("https://api.paymongo.test/v1", "")

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{})
	assert.Error(t, err)

	_, err2 := client.VerifyPayment(context.Background(), "pi_1")
	assert.Error(t, err2)
}
