package models

import (
	"time"
)

type Role string

const (
	AdminRole Role = "admin"
	UserRole  Role = "user"
)

type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" gorm:"uniqueIndex;not null" binding:"required,email"`
	Password   string `json:"password,omitempty" binding:"required,min=6"`
	IsVerified bool   `json:"isVerified"`
	Role       Role   `json:"role" gorm:"type:varchar(20);default:'user'"`

	// Subscription projection: denormalized from UserSubscription rows for
	// cheap reads. Written only by the lifecycle handlers and the
	// reconciliation sweep, always as a full recomputation.
	HasActiveSubscription bool       `json:"hasActiveSubscription"`
	IsTrialActive         bool       `json:"isTrialActive"`
	HasUsedTrial          bool       `json:"hasUsedTrial"`
	TrialStartDate        *time.Time `json:"trialStartDate"`
	TrialEndDate          *time.Time `json:"trialEndDate"`

	ProfilePictureURL string    `json:"profilePicture"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UserLogin is the credential payload accepted by the login endpoint.
type UserLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
