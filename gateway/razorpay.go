package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// ErrUnavailable marks gateway failures the caller may retry: missing
// credentials, timeouts, upstream errors. Distinct from validation problems
// so routes can answer 503 instead of 400.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Order is the subset of a Razorpay order the lifecycle handlers need.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// PaymentDetails is the instrument metadata reported for a settled payment.
type PaymentDetails struct {
	Method string `json:"method"`
	Bank   string `json:"bank"`
	Wallet string `json:"wallet"`
	VPA    string `json:"vpa"`
}

// Client is the payment gateway capability injected into the subscription
// handlers, so tests can substitute a fake instead of hitting Razorpay.
type Client interface {
	// CreateOrder registers an order for amount in rupees; the gateway is
	// charged in paise.
	CreateOrder(amount int, currency, receipt string) (*Order, error)
	// VerifySignature checks the HMAC-SHA256 callback signature over
	// "orderID|paymentID". Must not leak timing on mismatch.
	VerifySignature(orderID, paymentID, signature string) bool
	// FetchPayment returns the instrument metadata of a settled payment.
	FetchPayment(paymentID string) (*PaymentDetails, error)
}

type RazorpayClient struct {
	api       *razorpay.Client
	keySecret string
}

// NewRazorpayClient builds a client from RAZORPAY_KEY_ID and
// RAZORPAY_KEY_SECRET. With missing credentials the client stays usable but
// every gateway call reports ErrUnavailable.
func NewRazorpayClient() *RazorpayClient {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")

	c := &RazorpayClient{keySecret: keySecret}
	if keyID != "" && keySecret != "" {
		c.api = razorpay.NewClient(keyID, keySecret)
	}
	return c
}

func (c *RazorpayClient) CreateOrder(amount int, currency, receipt string) (*Order, error) {
	if c.api == nil {
		return nil, fmt.Errorf("%w: missing credentials", ErrUnavailable)
	}

	data := map[string]interface{}{
		"amount":   amount * 100, // rupees to paise
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	order := &Order{Currency: currency, Receipt: receipt}
	if id, ok := body["id"].(string); ok {
		order.ID = id
	}
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	} else {
		order.Amount = int64(amount) * 100
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order response missing id", ErrUnavailable)
	}
	return order, nil
}

func (c *RazorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, c.keySecret)
}

func (c *RazorpayClient) FetchPayment(paymentID string) (*PaymentDetails, error) {
	if c.api == nil {
		return nil, fmt.Errorf("%w: missing credentials", ErrUnavailable)
	}

	body, err := c.api.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	details := &PaymentDetails{}
	if v, ok := body["method"].(string); ok {
		details.Method = v
	}
	if v, ok := body["bank"].(string); ok {
		details.Bank = v
	}
	if v, ok := body["wallet"].(string); ok {
		details.Wallet = v
	}
	if v, ok := body["vpa"].(string); ok {
		details.VPA = v
	}
	return details, nil
}

// VerifySignature recomputes the Razorpay callback signature
// (HMAC-SHA256 over "orderID|paymentID", hex encoded) and compares it in
// constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// OrderReceipt builds a deterministic receipt for a subscription order.
// Razorpay caps receipts at 40 characters; the sha256 suffix keeps distinct
// subscriptions from colliding the way naive truncation would.
func OrderReceipt(subscriptionID string, now time.Time) string {
	suffix := subscriptionID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", subscriptionID, now.UnixNano())))
	return fmt.Sprintf("ord_%s_%s", suffix, hex.EncodeToString(sum[:])[:8])
}
