package subscriptions

import (
	"errors"
	"net/http"
	"time"

	"github.com/devxankit/eduvado-backend/db"
	"github.com/devxankit/eduvado-backend/gateway"
	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/services"
	"github.com/devxankit/eduvado-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreatePayment opens a gateway order to convert an expired trial into a
// paid subscription. At most one order may be pending per subscription, and
// the charged amount is revalidated against the plan catalog before any
// money is asked for.
// @Summary Create a payment order
// @Description Create a Razorpay order for an expired trial that awaits its conversion payment
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "order: gateway order, subscription: summary"
// @Failure 400 {object} map[string]interface{} "error: Subscription amount does not match plan pricing"
// @Failure 404 {object} map[string]interface{} "error: No subscription requires payment"
// @Failure 409 {object} map[string]interface{} "error: Payment already completed or order already pending"
// @Failure 503 {object} map[string]interface{} "error: Payment gateway unavailable"
// @Router /api/subscription/create-payment [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}
	now := time.Now()

	var sub models.UserSubscription
	err := db.DB.First(&sub, "user_id = ? AND status = ? AND payment_status = ? AND is_trial_period = ?",
		userID, models.SubscriptionExpired, models.PaymentStatePending, true).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogErrorWithUser(userID, err, "Error locating payable subscription in CreatePayment")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order"})
			return
		}

		// No expired trial on record. The trial may have lapsed without any
		// request noticing yet: expire it here, then proceed with it.
		var open models.UserSubscription
		err = db.DB.Where("user_id = ? AND status IN ?", userID, []models.SubscriptionStatus{
			models.SubscriptionTrial,
			models.SubscriptionActive,
		}).Order("created_at DESC").First(&open).Error
		if err != nil || open.DerivedStatusAt(now) != models.SubscriptionExpired {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No subscription found that requires payment"})
			return
		}
		if _, err := services.ExpireIfDue(db.DB, &open, now); err != nil {
			utils.LogErrorWithUser(userID, err, "Error expiring overdue subscription in CreatePayment")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order"})
			return
		}
		if err := services.RefreshUserFlags(db.DB, open.UserID, now); err != nil {
			utils.LogErrorWithUser(userID, err, "Error refreshing user flags in CreatePayment")
		}
		if open.PaymentStatus != models.PaymentStatePending || !open.IsTrialPeriod {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No subscription found that requires payment"})
			return
		}
		sub = open
	}

	if sub.PaymentStatus == models.PaymentStateCompleted {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Payment already completed for this subscription"})
		return
	}

	// A created/authorized ledger row means an order is already out with the
	// gateway; hand its id back instead of opening a second one.
	var pendingOrder models.Payment
	err = db.DB.First(&pendingOrder, "subscription_id = ? AND status IN ?",
		sub.ID, []models.PaymentStatus{models.PaymentCreated, models.PaymentAuthorized}).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A payment order is already pending for this subscription",
			"orderId": pendingOrder.RazorpayOrderID,
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogErrorWithUser(userID, err, "Error checking pending orders in CreatePayment")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order"})
		return
	}

	// The stored amount is a snapshot; recheck it against the catalog so a
	// tampered or stale row can never drive the charge.
	var plan models.SubscriptionPlan
	if err := db.DB.First(&plan, "plan_type = ?", sub.PlanType).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Plan missing during amount validation in CreatePayment")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order"})
		return
	}
	if sub.Amount != plan.Price {
		utils.LogErrorWithUser(userID, nil, "Subscription amount mismatch in CreatePayment")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Subscription amount does not match plan pricing"})
		return
	}

	receipt := gateway.OrderReceipt(sub.ID, now)
	order, err := h.gateway.CreateOrder(sub.Amount, "INR", receipt)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Gateway order creation failed in CreatePayment")
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Payment gateway unavailable, please retry later"})
		return
	}

	payment := models.Payment{
		UserID:          sub.UserID,
		SubscriptionID:  sub.ID,
		PlanID:          sub.PlanID,
		PlanType:        sub.PlanType,
		Amount:          sub.Amount,
		Currency:        "INR",
		RazorpayOrderID: order.ID,
		Status:          models.PaymentCreated,
		OrderCreatedAt:  now,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).
			Update("razorpay_order_id", order.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent create-payment: the partial
			// index admits one open order per subscription. Hand back the
			// winner's order id instead of the one we just minted.
			var winner models.Payment
			if err := db.DB.First(&winner, "subscription_id = ? AND status IN ?",
				sub.ID, []models.PaymentStatus{models.PaymentCreated, models.PaymentAuthorized}).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"message": "A payment order is already pending for this subscription",
					"orderId": winner.RazorpayOrderID,
				})
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "A payment order is already pending for this subscription",
			})
			return
		}
		utils.LogErrorWithUser(userID, err, "Error recording payment order in CreatePayment")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order"})
		return
	}

	utils.LogSuccessWithUser(userID, "Payment order created in CreatePayment")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment order created successfully",
		"order": gin.H{
			"id":       order.ID,
			"amount":   order.Amount,
			"currency": order.Currency,
			"receipt":  order.Receipt,
		},
		"subscription": gin.H{
			"id":       sub.ID,
			"planType": sub.PlanType,
			"amount":   sub.Amount,
		},
	})
}

// VerifyPayment confirms a gateway callback and activates the subscription.
// The signature is checked before anything is read or written, and an
// already-completed subscription answers 409 so webhook redelivery cannot
// double-apply. The paid period starts at verification time, not at the old
// trial-derived end date.
// @Summary Verify a payment
// @Description Verify the Razorpay signature and activate the subscription
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "orderId, paymentId, signature"
// @Success 200 {object} map[string]interface{} "subscription: activated subscription"
// @Failure 400 {object} map[string]interface{} "error: Missing payment verification fields"
// @Failure 401 {object} map[string]interface{} "error: Payment verification failed"
// @Failure 404 {object} map[string]interface{} "error: No subscription found for this order"
// @Failure 409 {object} map[string]interface{} "error: Payment already processed"
// @Router /api/subscription/verify-payment [post]
func (h *Handler) VerifyPayment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var body struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&body); err != nil ||
		body.OrderID == "" || body.PaymentID == "" || body.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "orderId, paymentId and signature are required"})
		return
	}

	// Nothing is touched before the signature holds. The response does not
	// say which part of the comparison failed.
	if !h.gateway.VerifySignature(body.OrderID, body.PaymentID, body.Signature) {
		utils.LogErrorWithUser(userID, nil, "Signature verification failed in VerifyPayment")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Payment verification failed"})
		return
	}

	var sub models.UserSubscription
	if err := db.DB.First(&sub, "razorpay_order_id = ? AND user_id = ?", body.OrderID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No subscription found for this order"})
		return
	}

	if sub.PaymentStatus == models.PaymentStateCompleted {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Payment already processed"})
		return
	}

	// Instrument metadata is informational; a fetch failure must not undo a
	// signature-verified capture.
	details, err := h.gateway.FetchPayment(body.PaymentID)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Payment details fetch failed in VerifyPayment")
		details = nil
	}

	now := time.Now()
	endDate := models.CalculateSubscriptionEndDate(sub.PlanType, now)

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
			"status":              models.SubscriptionActive,
			"payment_status":      models.PaymentStateCompleted,
			"is_trial_period":     false,
			"start_date":          now,
			"end_date":            endDate,
			"razorpay_payment_id": body.PaymentID,
			"razorpay_signature":  body.Signature,
		}).Error; err != nil {
			return err
		}

		paymentUpdates := map[string]interface{}{
			"razorpay_payment_id": body.PaymentID,
			"razorpay_signature":  body.Signature,
			"status":              models.PaymentCaptured,
			"payment_captured_at": now,
		}
		if details != nil {
			paymentUpdates["method"] = details.Method
			paymentUpdates["bank"] = details.Bank
			paymentUpdates["wallet"] = details.Wallet
			paymentUpdates["vpa"] = details.VPA
		}
		if err := tx.Model(&models.Payment{}).Where("razorpay_order_id = ?", body.OrderID).
			Updates(paymentUpdates).Error; err != nil {
			return err
		}

		return services.RefreshUserFlags(tx, sub.UserID, now)
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error activating subscription in VerifyPayment")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error verifying payment"})
		return
	}

	sub.Status = models.SubscriptionActive
	sub.PaymentStatus = models.PaymentStateCompleted
	sub.IsTrialPeriod = false
	sub.StartDate = now
	sub.EndDate = endDate
	sub.RazorpayPaymentID = body.PaymentID

	utils.LogSuccessWithUser(userID, "Payment verified and subscription activated in VerifyPayment")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Payment verified and subscription activated successfully",
		"subscription": subscriptionSummary(&sub, now),
	})
}
