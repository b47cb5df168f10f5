package models

import (
	"time"
)

// PaymentStatus tracks a gateway order attempt through its lifecycle. A row
// only reaches captured after signature verification and is never mutated
// again afterwards.
type PaymentStatus string

const (
	PaymentCreated    PaymentStatus = "created"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment is the append-only ledger of Razorpay order attempts, one row per
// order created against a subscription.
type Payment struct {
	ID                string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID            string        `json:"userId" gorm:"type:uuid;not null;index"`
	SubscriptionID    string        `json:"subscriptionId" gorm:"type:uuid;not null;index"`
	PlanID            string        `json:"planId" gorm:"type:uuid;not null"`
	PlanType          PlanType      `json:"planType" gorm:"type:varchar(20);not null"`
	Amount            int           `json:"amount" gorm:"not null"`
	Currency          string        `json:"currency" gorm:"type:varchar(10);default:'INR'"`
	RazorpayOrderID   string        `json:"razorpayOrderId" gorm:"uniqueIndex;not null"`
	RazorpayPaymentID string        `json:"razorpayPaymentId"`
	RazorpaySignature string        `json:"-"`
	Status            PaymentStatus `json:"status" gorm:"type:varchar(20);default:'created';index"`

	// Payment instrument metadata reported by the gateway, informational only.
	Method string `json:"method"`
	Bank   string `json:"bank"`
	Wallet string `json:"wallet"`
	VPA    string `json:"vpa" gorm:"column:vpa"`

	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`

	OrderCreatedAt    time.Time  `json:"orderCreatedAt"`
	PaymentCapturedAt *time.Time `json:"paymentCapturedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
