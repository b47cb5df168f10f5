package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/devxankit/eduvado-backend/db"
	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/services"
	"github.com/devxankit/eduvado-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CheckSubscriptionAccess gates course content behind a live subscription.
// When the stored status lags behind the dates it persists the expiry (same
// transition as the reconciliation sweep) before denying, so the denial
// reason matches what the client will see on its next status poll.
func CheckSubscriptionAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			c.Abort()
			return
		}
		now := time.Now()

		var sub models.UserSubscription
		err := db.DB.Where("user_id = ? AND status IN ?", userID, []models.SubscriptionStatus{
			models.SubscriptionTrial,
			models.SubscriptionActive,
		}).Order("created_at DESC").First(&sub).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.LogErrorWithUser(userID, err, "Error fetching subscription in CheckSubscriptionAccess")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error checking subscription status"})
				c.Abort()
				return
			}
			denyWithoutOpenSubscription(c, userID)
			return
		}

		if !sub.IsActiveAt(now) {
			if _, err := services.ExpireIfDue(db.DB, &sub, now); err != nil {
				utils.LogErrorWithUser(userID, err, "Error expiring subscription in CheckSubscriptionAccess")
			} else if err := services.RefreshUserFlags(db.DB, sub.UserID, now); err != nil {
				utils.LogErrorWithUser(userID, err, "Error refreshing user flags in CheckSubscriptionAccess")
			}

			if sub.IsTrialPeriod {
				c.JSON(http.StatusForbidden, gin.H{
					"success":         false,
					"message":         "Your trial period has expired. Please complete payment to continue accessing courses.",
					"trialExpired":    true,
					"requiresPayment": true,
					"subscription": gin.H{
						"id":           sub.ID,
						"status":       sub.Status,
						"planType":     sub.PlanType,
						"amount":       sub.Amount,
						"trialEndDate": sub.TrialEndDate,
					},
				})
			} else {
				c.JSON(http.StatusForbidden, gin.H{
					"success":             false,
					"message":             "Your subscription has expired. Please renew to continue accessing courses.",
					"subscriptionExpired": true,
					"subscription": gin.H{
						"status":   sub.Status,
						"planType": sub.PlanType,
						"endDate":  sub.EndDate,
					},
				})
			}
			c.Abort()
			return
		}

		c.Set("subscription", sub)
		c.Next()
	}
}

// CheckEnrollmentAccess is the enrollment variant of the gate: the same
// predicate, read-only — an enroll attempt never writes status corrections.
func CheckEnrollmentAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			c.Abort()
			return
		}
		now := time.Now()

		var sub models.UserSubscription
		err := db.DB.Where("user_id = ? AND status IN ?", userID, []models.SubscriptionStatus{
			models.SubscriptionTrial,
			models.SubscriptionActive,
		}).Order("created_at DESC").First(&sub).Error
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"success":              false,
				"message":              "You need a subscription to enroll in courses. Please subscribe first.",
				"requiresSubscription": true,
			})
			c.Abort()
			return
		}

		if !sub.IsActiveAt(now) {
			c.JSON(http.StatusForbidden, gin.H{
				"success":             false,
				"message":             "Your subscription has expired. Please renew to enroll in courses.",
				"subscriptionExpired": true,
			})
			c.Abort()
			return
		}

		c.Set("subscription", sub)
		c.Next()
	}
}

func denyWithoutOpenSubscription(c *gin.Context, userID interface{}) {
	// Distinguish "never subscribed" from "trial lapsed, payment owed".
	var expiredTrial models.UserSubscription
	err := db.DB.First(&expiredTrial, "user_id = ? AND status = ? AND payment_status = ? AND is_trial_period = ?",
		userID, models.SubscriptionExpired, models.PaymentStatePending, true).Error
	if err == nil {
		c.JSON(http.StatusForbidden, gin.H{
			"success":         false,
			"message":         "Your trial period has expired. Please complete payment to continue accessing courses.",
			"trialExpired":    true,
			"requiresPayment": true,
			"subscription": gin.H{
				"id":           expiredTrial.ID,
				"status":       expiredTrial.Status,
				"planType":     expiredTrial.PlanType,
				"amount":       expiredTrial.Amount,
				"trialEndDate": expiredTrial.TrialEndDate,
			},
		})
		c.Abort()
		return
	}

	c.JSON(http.StatusForbidden, gin.H{
		"success":              false,
		"message":              "No active subscription found. Please subscribe to access courses.",
		"requiresSubscription": true,
	})
	c.Abort()
}
