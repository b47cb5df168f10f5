package services

import (
	"time"

	"github.com/devxankit/eduvado-backend/models"

	"gorm.io/gorm"
)

// ExpireIfDue persists the derived status of an open subscription when its
// dates say it is no longer live. A lapsed trial additionally becomes
// payable (paymentStatus=pending) so the conversion flow can pick it up.
// Returns whether a correction was written; sub is updated in place.
func ExpireIfDue(db *gorm.DB, sub *models.UserSubscription, now time.Time) (bool, error) {
	derived := sub.DerivedStatusAt(now)
	if derived == sub.Status {
		return false, nil
	}

	updates := map[string]interface{}{"status": derived}
	if derived == models.SubscriptionExpired && sub.IsTrialPeriod {
		updates["payment_status"] = models.PaymentStatePending
	}

	if err := db.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
		return false, err
	}

	sub.Status = derived
	if derived == models.SubscriptionExpired && sub.IsTrialPeriod {
		sub.PaymentStatus = models.PaymentStatePending
	}
	return true, nil
}

// RefreshUserFlags recomputes the denormalized subscription flags on the
// user row as a fold over all of that user's subscriptions. The projection
// is never patched incrementally: every writer recomputes it wholesale so a
// missed update cannot leave the flags drifted.
func RefreshUserFlags(db *gorm.DB, userID string, now time.Time) error {
	var subs []models.UserSubscription
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error; err != nil {
		return err
	}

	hasActive := false
	trialActive := false
	usedTrial := false
	var trialStart, trialEnd *time.Time

	for i := range subs {
		sub := &subs[i]
		if sub.IsActiveAt(now) {
			hasActive = true
			if sub.Status == models.SubscriptionTrial {
				trialActive = true
			}
		}
		if sub.IsTrialPeriod || !sub.TrialStartDate.IsZero() {
			usedTrial = true
		}
		if trialStart == nil && !sub.TrialStartDate.IsZero() {
			ts := sub.TrialStartDate
			te := sub.TrialEndDate
			trialStart = &ts
			trialEnd = &te
		}
	}

	return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"has_active_subscription": hasActive,
		"is_trial_active":         trialActive,
		"has_used_trial":          usedTrial,
		"trial_start_date":        trialStart,
		"trial_end_date":          trialEnd,
	}).Error
}
