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

// Handler carries the payment gateway capability so tests can swap Razorpay
// for a fake. Everything else goes through the shared db handle.
type Handler struct {
	gateway gateway.Client
}

func NewHandler(g gateway.Client) *Handler {
	return &Handler{gateway: g}
}

var defaultPlans = []models.SubscriptionPlan{
	{PlanType: models.PlanMonthly, Description: "Monthly subscription with full access to all courses", Price: 99, IsActive: true},
	{PlanType: models.PlanQuarterly, Description: "Quarterly subscription with full access to all courses", Price: 299, IsActive: true},
	{PlanType: models.PlanYearly, Description: "Yearly subscription with full access to all courses", Price: 999, IsActive: true},
}

// GetPlans lists the active subscription plans, seeding the default catalog
// when it is empty.
// @Summary List subscription plans
// @Description Return the active subscription plans, creating the default catalog on first use
// @Tags subscriptions
// @Produce json
// @Success 200 {object} map[string]interface{} "plans: active subscription plans"
// @Failure 500 {object} map[string]interface{} "error: Error fetching subscription plans"
// @Router /api/subscription/plans [get]
func (h *Handler) GetPlans(c *gin.Context) {
	var plans []models.SubscriptionPlan
	if err := db.DB.Where("is_active = ?", true).Find(&plans).Error; err != nil {
		utils.LogError(err, "Error fetching subscription plans in GetPlans")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching subscription plans"})
		return
	}

	if len(plans) == 0 {
		for i := range defaultPlans {
			plan := defaultPlans[i]
			if err := db.DB.Create(&plan).Error; err != nil {
				utils.LogError(err, "Error seeding default subscription plans in GetPlans")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching subscription plans"})
				return
			}
		}
		if err := db.DB.Where("is_active = ?", true).Find(&plans).Error; err != nil {
			utils.LogError(err, "Error fetching seeded subscription plans in GetPlans")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching subscription plans"})
			return
		}
		utils.LogSuccess("Default subscription plans created in GetPlans")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "plans": plans})
}

// GetStatus reports the user's subscription state and the next action the
// client should take. An overdue open subscription is expired in place
// before classification so the answer never contradicts the dates.
// @Summary Get subscription status
// @Description Return the user's subscription state with a machine-readable next action
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "status, nextAction, subscription"
// @Failure 401 {object} map[string]interface{} "error: Unauthorized"
// @Failure 500 {object} map[string]interface{} "error: Error checking subscription status"
// @Router /api/subscription/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}
	now := time.Now()

	var subs []models.UserSubscription
	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error fetching subscriptions in GetStatus")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error checking subscription status"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in GetStatus")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error checking subscription status"})
		return
	}

	// Opportunistic self-heal: persist expiry for open rows whose dates
	// have passed, so classification below works on corrected statuses.
	flagsStale := false
	for i := range subs {
		changed, err := services.ExpireIfDue(db.DB, &subs[i], now)
		if err != nil {
			utils.LogErrorWithUser(userID, err, "Error expiring overdue subscription in GetStatus")
		}
		flagsStale = flagsStale || changed
	}
	if flagsStale {
		if err := services.RefreshUserFlags(db.DB, user.ID, now); err != nil {
			utils.LogErrorWithUser(userID, err, "Error refreshing user flags in GetStatus")
		}
	}

	var activeSub *models.UserSubscription
	for i := range subs {
		if subs[i].IsActiveAt(now) {
			activeSub = &subs[i]
			break
		}
	}
	var expiredTrial *models.UserSubscription
	for i := range subs {
		if subs[i].Status == models.SubscriptionExpired &&
			subs[i].PaymentStatus == models.PaymentStatePending &&
			subs[i].IsTrialPeriod {
			expiredTrial = &subs[i]
			break
		}
	}

	// Defensive repair of the denormalized flag: a used-trial marker with no
	// subscription rows at all is a leftover from a purged history.
	if user.HasUsedTrial && len(subs) == 0 {
		if err := db.DB.Model(&user).Update("has_used_trial", false).Error; err != nil {
			utils.LogErrorWithUser(userID, err, "Error resetting hasUsedTrial in GetStatus")
		} else {
			user.HasUsedTrial = false
		}
	}

	status := "no_subscription"
	nextAction := "start_trial"
	var current *models.UserSubscription

	switch {
	case activeSub != nil && activeSub.Status == models.SubscriptionTrial:
		status = "trial_active"
		nextAction = "wait_for_trial_end"
		current = activeSub
	case activeSub != nil:
		status = "active_paid"
		nextAction = "none"
		current = activeSub
	case expiredTrial != nil:
		status = "trial_expired"
		nextAction = "create_payment"
		current = expiredTrial
	case user.HasUsedTrial && len(subs) > 0:
		status = "trial_used"
		nextAction = "subscribe_paid"
	}

	response := gin.H{
		"success":        true,
		"status":         status,
		"nextAction":     nextAction,
		"canCreateTrial": !user.HasUsedTrial || len(subs) == 0,
	}
	if current != nil {
		response["subscription"] = subscriptionSummary(current, now)
	}
	c.JSON(http.StatusOK, response)
}

// StartTrial opens the 3-day trial for the chosen plan. At most one trial
// per user, at most one open subscription per user: the checks run in order
// and the partial unique index backstops concurrent double-clicks.
// @Summary Start a trial subscription
// @Description Start the 3-day trial for a plan; each user gets a single trial
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "planType: monthly, quarterly or yearly"
// @Success 200 {object} map[string]interface{} "subscription: created trial"
// @Failure 400 {object} map[string]interface{} "error: Invalid plan type"
// @Failure 404 {object} map[string]interface{} "error: Subscription plan not found"
// @Failure 409 {object} map[string]interface{} "error: Already subscribed or trial already used"
// @Router /api/subscription/start-trial [post]
func (h *Handler) StartTrial(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var body struct {
		PlanType models.PlanType `json:"planType"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !models.IsValidPlanType(body.PlanType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid plan type"})
		return
	}
	now := time.Now()

	var subs []models.UserSubscription
	if err := db.DB.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error fetching subscriptions in StartTrial")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error starting trial subscription"})
		return
	}
	for i := range subs {
		if subs[i].IsActiveAt(now) {
			c.JSON(http.StatusConflict, gin.H{
				"success":      false,
				"message":      "You already have an active subscription",
				"subscription": subscriptionSummary(&subs[i], now),
			})
			return
		}
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in StartTrial")
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if user.HasUsedTrial {
		if len(subs) > 0 {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "You have already used your trial period"})
			return
		}
		// Flag says used but no history exists: repair the projection and
		// let the trial proceed.
		if err := db.DB.Model(&user).Update("has_used_trial", false).Error; err != nil {
			utils.LogErrorWithUser(userID, err, "Error resetting hasUsedTrial in StartTrial")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error starting trial subscription"})
			return
		}
	}

	var plan models.SubscriptionPlan
	if err := db.DB.First(&plan, "plan_type = ? AND is_active = ?", body.PlanType, true).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subscription plan not found"})
		return
	}

	trialStart := now
	trialEnd := models.CalculateTrialEndDate(trialStart)
	// The paid window starts where the trial ends.
	endDate := models.CalculateSubscriptionEndDate(body.PlanType, trialEnd)

	sub := models.UserSubscription{
		UserID:         user.ID,
		PlanID:         plan.ID,
		PlanType:       plan.PlanType,
		Status:         models.SubscriptionTrial,
		Amount:         plan.Price,
		PaymentStatus:  models.PaymentStatePending,
		StartDate:      trialStart,
		EndDate:        endDate,
		TrialStartDate: trialStart,
		TrialEndDate:   trialEnd,
		IsTrialPeriod:  true,
		AutoRenew:      false,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return services.RefreshUserFlags(tx, user.ID, now)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent start-trial.
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "You already have an active subscription"})
			return
		}
		utils.LogErrorWithUser(userID, err, "Error creating trial subscription in StartTrial")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error starting trial subscription"})
		return
	}

	utils.LogSuccessWithUser(userID, "Trial subscription started in StartTrial")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Trial subscription started successfully",
		"subscription": subscriptionSummary(&sub, now),
	})
}

// CancelSubscription marks a subscription cancelled. Cancellation is
// terminal: a cancelled row is never payable and never reactivated.
// @Summary Cancel a subscription
// @Description Cancel one of the user's subscriptions; cancellation is irreversible
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "subscriptionId"
// @Success 200 {object} map[string]interface{} "message: Subscription cancelled successfully"
// @Failure 404 {object} map[string]interface{} "error: Subscription not found"
// @Failure 409 {object} map[string]interface{} "error: Subscription already ended"
// @Router /api/subscription/cancel [post]
func (h *Handler) CancelSubscription(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var body struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.SubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Subscription ID is required"})
		return
	}

	// Scoped by owner: someone else's subscription id answers 404, not 403,
	// to avoid confirming the id exists.
	var sub models.UserSubscription
	if err := db.DB.First(&sub, "id = ? AND user_id = ?", body.SubscriptionID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subscription not found"})
		return
	}

	if sub.Status == models.SubscriptionCancelled || sub.Status == models.SubscriptionExpired {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Subscription is already " + string(sub.Status)})
		return
	}

	now := time.Now()
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&sub).Update("status", models.SubscriptionCancelled).Error; err != nil {
			return err
		}
		return services.RefreshUserFlags(tx, sub.UserID, now)
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error cancelling subscription in CancelSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error cancelling subscription"})
		return
	}

	utils.LogSuccessWithUser(userID, "Subscription cancelled in CancelSubscription")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subscription cancelled successfully"})
}

// GetPayments returns the user's payment ledger, newest first.
// @Summary List payment history
// @Description Return the user's gateway payment attempts, newest first
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "payments: payment ledger rows"
// @Failure 500 {object} map[string]interface{} "error: Error fetching payments"
// @Router /api/subscription/payments [get]
func (h *Handler) GetPayments(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var payments []models.Payment
	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error fetching payments in GetPayments")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}

func subscriptionSummary(sub *models.UserSubscription, now time.Time) gin.H {
	return gin.H{
		"id":             sub.ID,
		"status":         sub.Status,
		"planType":       sub.PlanType,
		"amount":         sub.Amount,
		"paymentStatus":  sub.PaymentStatus,
		"startDate":      sub.StartDate,
		"endDate":        sub.EndDate,
		"trialStartDate": sub.TrialStartDate,
		"trialEndDate":   sub.TrialEndDate,
		"isTrialPeriod":  sub.IsTrialPeriod,
		"remainingDays":  sub.RemainingDaysAt(now),
	}
}
