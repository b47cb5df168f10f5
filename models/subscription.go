package models

import (
	"math"
	"time"
)

type PlanType string

const (
	PlanMonthly   PlanType = "monthly"
	PlanQuarterly PlanType = "quarterly"
	PlanYearly    PlanType = "yearly"
)

type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// PaymentState is the payment axis of a subscription, independent from its
// lifecycle status: an expired trial keeps paymentStatus=pending until the
// conversion payment is verified.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateFailed    PaymentState = "failed"
)

// TrialDays is the length of the free trial window.
const TrialDays = 3

type SubscriptionPlan struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PlanType    PlanType  `json:"planType" gorm:"type:varchar(20);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"not null"`
	Price       int       `json:"price" gorm:"not null"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UserSubscription struct {
	ID                string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID            string             `json:"userId" gorm:"type:uuid;not null;index:idx_user_subscriptions_user_status"`
	PlanID            string             `json:"planId" gorm:"type:uuid;not null"`
	PlanType          PlanType           `json:"planType" gorm:"type:varchar(20);not null"`
	Status            SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'trial';index:idx_user_subscriptions_user_status"`
	Amount            int                `json:"amount" gorm:"not null"`
	PaymentStatus     PaymentState       `json:"paymentStatus" gorm:"type:varchar(20);default:'pending'"`
	StartDate         time.Time          `json:"startDate" gorm:"not null"`
	EndDate           time.Time          `json:"endDate" gorm:"not null;index:idx_user_subscriptions_end_status"`
	TrialStartDate    time.Time          `json:"trialStartDate"`
	TrialEndDate      time.Time          `json:"trialEndDate" gorm:"index:idx_user_subscriptions_trial_end_status"`
	IsTrialPeriod     bool               `json:"isTrialPeriod" gorm:"not null"`
	RazorpayOrderID   string             `json:"razorpayOrderId"`
	RazorpayPaymentID string             `json:"razorpayPaymentId"`
	RazorpaySignature string             `json:"-"`
	AutoRenew         bool               `json:"autoRenew" gorm:"not null"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func IsValidPlanType(planType PlanType) bool {
	switch planType {
	case PlanMonthly, PlanQuarterly, PlanYearly:
		return true
	}
	return false
}

// PlanDurationDays returns the paid period of a plan in days. Durations are
// fixed day counts, never calendar months: changing this silently alters
// billing semantics. Returns 0 for an unknown plan type.
func PlanDurationDays(planType PlanType) int {
	switch planType {
	case PlanMonthly:
		return 30
	case PlanQuarterly:
		return 90
	case PlanYearly:
		return 360
	}
	return 0
}

func CalculateTrialEndDate(start time.Time) time.Time {
	return start.Add(TrialDays * 24 * time.Hour)
}

func CalculateSubscriptionEndDate(planType PlanType, start time.Time) time.Time {
	return start.Add(time.Duration(PlanDurationDays(planType)) * 24 * time.Hour)
}

// IsActiveAt reports whether the subscription grants access at the given
// instant. The boundary is inclusive: a trial whose trialEndDate equals now
// is still active.
func (s *UserSubscription) IsActiveAt(now time.Time) bool {
	if s.Status == SubscriptionTrial {
		return !now.After(s.TrialEndDate)
	}
	return s.Status == SubscriptionActive && !now.After(s.EndDate)
}

// RemainingDaysAt returns the whole days left on the relevant window,
// rounded up and never negative.
func (s *UserSubscription) RemainingDaysAt(now time.Time) int {
	end := s.EndDate
	if s.Status == SubscriptionTrial {
		end = s.TrialEndDate
	}
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// DerivedStatusAt computes the status the subscription should have right now
// from its dates, independent of what is persisted. The reconciliation sweep
// and the access gate both trust this function so concurrent corrections
// converge on the same value.
func (s *UserSubscription) DerivedStatusAt(now time.Time) SubscriptionStatus {
	switch s.Status {
	case SubscriptionCancelled:
		return SubscriptionCancelled
	case SubscriptionTrial:
		if now.After(s.TrialEndDate) {
			return SubscriptionExpired
		}
		return SubscriptionTrial
	case SubscriptionActive:
		if now.After(s.EndDate) {
			return SubscriptionExpired
		}
		return SubscriptionActive
	}
	return s.Status
}
