package services

import (
	"strconv"
	"sync"
	"time"

	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	// Terminal rows are kept for a while before the cleanup job purges them.
	expiredSubscriptionRetention = 30 * 24 * time.Hour
	failedPaymentRetention       = 7 * 24 * time.Hour
)

// SubscriptionCronService reconciles persisted subscription statuses with
// their derived statuses on a schedule, and purges stale terminal rows. The
// sweep is a correction pass: user-facing requests already self-heal, this
// catches the rows nobody asked about.
type SubscriptionCronService struct {
	db      *gorm.DB
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

func NewSubscriptionCronService(db *gorm.DB) *SubscriptionCronService {
	return &SubscriptionCronService{db: db}
}

// Start schedules the hourly status sweep and the daily cleanup.
func (s *SubscriptionCronService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		utils.LogInfo("Subscription cron service is already running")
		return
	}

	s.cron = cron.New()
	s.cron.AddFunc("0 * * * *", func() {
		if err := s.UpdateExpiredSubscriptions(); err != nil {
			utils.LogError(err, "Subscription status sweep failed")
		}
	})
	s.cron.AddFunc("0 0 * * *", func() {
		if err := s.CleanupOldData(); err != nil {
			utils.LogError(err, "Subscription data cleanup failed")
		}
	})
	s.cron.Start()
	s.running = true
	utils.LogSuccess("Subscription cron service started")
}

func (s *SubscriptionCronService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	utils.LogInfo("Subscription cron service stopped")
}

func (s *SubscriptionCronService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// UpdateExpiredSubscriptions flips every trial/active subscription whose
// derived status has moved on, then recomputes the projection flags of the
// affected users. A failure on one row is logged and does not abort the
// batch; a failure to load the batch aborts the cycle and the next tick
// retries.
func (s *SubscriptionCronService) UpdateExpiredSubscriptions() error {
	now := time.Now()

	var subs []models.UserSubscription
	err := s.db.Where("status IN ?", []models.SubscriptionStatus{
		models.SubscriptionTrial,
		models.SubscriptionActive,
	}).Find(&subs).Error
	if err != nil {
		return err
	}

	updated := 0
	affected := make(map[string]struct{})
	for i := range subs {
		changed, err := ExpireIfDue(s.db, &subs[i], now)
		if err != nil {
			utils.LogError(err, "Error updating subscription "+subs[i].ID)
			continue
		}
		if changed {
			updated++
			affected[subs[i].UserID] = struct{}{}
		}
	}

	for userID := range affected {
		if err := RefreshUserFlags(s.db, userID, now); err != nil {
			utils.LogError(err, "Error refreshing flags for user "+userID)
		}
	}

	if updated > 0 {
		utils.LogInfo("Subscription sweep updated " + strconv.Itoa(updated) + " subscriptions")
	}
	return nil
}

// CleanupOldData purges long-expired subscriptions and stale failed payment
// rows. Storage hygiene only: the state machine never reads what this
// deletes, and disabling it is safe.
func (s *SubscriptionCronService) CleanupOldData() error {
	now := time.Now()

	err := s.db.Where("status = ? AND updated_at < ?",
		models.SubscriptionExpired, now.Add(-expiredSubscriptionRetention)).
		Delete(&models.UserSubscription{}).Error
	if err != nil {
		return err
	}

	return s.db.Where("status = ? AND created_at < ?",
		models.PaymentFailed, now.Add(-failedPaymentRetention)).
		Delete(&models.Payment{}).Error
}

// TriggerUpdate runs the status sweep outside the schedule.
func (s *SubscriptionCronService) TriggerUpdate() error {
	return s.UpdateExpiredSubscriptions()
}
