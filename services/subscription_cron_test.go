package services

import (
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestCronService_StartStop(t *testing.T) {
	service := NewSubscriptionCronService(nil)

	assert.False(t, service.IsRunning())

	service.Start()
	assert.True(t, service.IsRunning())

	// A second Start is a no-op, not a second scheduler
	service.Start()
	assert.True(t, service.IsRunning())

	service.Stop()
	assert.False(t, service.IsRunning())

	service.Stop()
	assert.False(t, service.IsRunning())
}

func TestUpdateExpiredSubscriptions_FlipsLapsedTrial(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	userID := "u0000000-0000-0000-0000-000000000001"
	subID := "s0000000-0000-0000-0000-000000000001"

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE status IN (.+)`).
		WillReturnRows(mock.NewRows([]string{
			"id", "user_id", "plan_type", "status", "payment_status",
			"start_date", "end_date", "trial_start_date", "trial_end_date", "is_trial_period",
		}).AddRow(subID, userID, "monthly", "trial", "pending",
			now.Add(-5*24*time.Hour), now.Add(28*24*time.Hour),
			now.Add(-5*24*time.Hour), now.Add(-2*24*time.Hour), true))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "user_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(mock.NewRows([]string{
			"id", "user_id", "plan_type", "status", "payment_status",
			"start_date", "end_date", "trial_start_date", "trial_end_date", "is_trial_period",
		}).AddRow(subID, userID, "monthly", "expired", "pending",
			now.Add(-5*24*time.Hour), now.Add(28*24*time.Hour),
			now.Add(-5*24*time.Hour), now.Add(-2*24*time.Hour), true))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	service := NewSubscriptionCronService(gormDB)
	err := service.UpdateExpiredSubscriptions()

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExpiredSubscriptions_LiveRowsUntouched(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE status IN (.+)`).
		WillReturnRows(mock.NewRows([]string{
			"id", "user_id", "plan_type", "status", "payment_status",
			"start_date", "end_date", "trial_start_date", "trial_end_date", "is_trial_period",
		}).AddRow("s0000000-0000-0000-0000-000000000001",
			"u0000000-0000-0000-0000-000000000001", "monthly", "active", "completed",
			now, now.Add(20*24*time.Hour), now.Add(-10*24*time.Hour), now.Add(-7*24*time.Hour), false))

	service := NewSubscriptionCronService(gormDB)
	err := service.UpdateExpiredSubscriptions()

	assert.NoError(t, err)
	// No UPDATE was queued: the sweep wrote nothing
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupOldData(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_subscriptions"`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	service := NewSubscriptionCronService(gormDB)
	err := service.CleanupOldData()

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireIfDue_NoChangeForLiveSubscription(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	sub := models.UserSubscription{
		ID:           "s0000000-0000-0000-0000-000000000001",
		Status:       models.SubscriptionTrial,
		TrialEndDate: now.Add(24 * time.Hour),
	}

	changed, err := ExpireIfDue(gormDB, &sub, now)

	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.SubscriptionTrial, sub.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireIfDue_LapsedTrialBecomesPayable(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	sub := models.UserSubscription{
		ID:            "s0000000-0000-0000-0000-000000000001",
		Status:        models.SubscriptionTrial,
		TrialEndDate:  now.Add(-time.Hour),
		IsTrialPeriod: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "user_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := ExpireIfDue(gormDB, &sub, now)

	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.SubscriptionExpired, sub.Status)
	assert.Equal(t, models.PaymentStatePending, sub.PaymentStatus)
}
