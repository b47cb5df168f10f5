package middleware

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

const testUserID = "u0000000-0000-0000-0000-000000000001"

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func gateRouter(authenticated bool, gate gin.HandlerFunc) *gin.Engine {
	r := testutils.SetupTestRouter()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", testUserID)
		})
	}
	r.GET("/gated", gate, func(c *gin.Context) {
		sub, _ := c.Get("subscription")
		s := sub.(models.UserSubscription)
		c.JSON(http.StatusOK, gin.H{"granted": true, "subscriptionId": s.ID})
	})
	return r
}

func subscriptionRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{
		"id", "user_id", "plan_id", "plan_type", "status", "amount",
		"payment_status", "start_date", "end_date",
		"trial_start_date", "trial_end_date", "is_trial_period",
	})
}

func TestCheckSubscriptionAccess_Unauthenticated(t *testing.T) {
	r := gateRouter(false, CheckSubscriptionAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCheckSubscriptionAccess_NoSubscription(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Checked for an expired trial awaiting payment before denying flat out
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := gateRouter(true, CheckSubscriptionAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, true, body["requiresSubscription"])
}

func TestCheckSubscriptionAccess_ExpiredTrialAwaitingPayment(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnError(gorm.ErrRecordNotFound)

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow("s0000000-0000-0000-0000-000000000001", testUserID,
				"p0000000-0000-0000-0000-000000000001", "monthly", "expired", 99,
				"pending", now.Add(-5*24*time.Hour), now.Add(28*24*time.Hour),
				now.Add(-5*24*time.Hour), now.Add(-2*24*time.Hour), true))

	r := gateRouter(true, CheckSubscriptionAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, true, body["trialExpired"])
	assert.Equal(t, true, body["requiresPayment"])
}

func TestCheckSubscriptionAccess_LapsedTrialSelfHeals(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	subID := "s0000000-0000-0000-0000-000000000001"

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow(subID, testUserID, "p0000000-0000-0000-0000-000000000001",
				"monthly", "trial", 99,
				"pending", now.Add(-5*24*time.Hour), now.Add(28*24*time.Hour),
				now.Add(-5*24*time.Hour), now.Add(-2*24*time.Hour), true))

	// Expiry persisted before denying
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "user_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Projection flags recomputed
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow(subID, testUserID, "p0000000-0000-0000-0000-000000000001",
				"monthly", "expired", 99,
				"pending", now.Add(-5*24*time.Hour), now.Add(28*24*time.Hour),
				now.Add(-5*24*time.Hour), now.Add(-2*24*time.Hour), true))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := gateRouter(true, CheckSubscriptionAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, true, body["trialExpired"])
	assert.Equal(t, true, body["requiresPayment"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSubscriptionAccess_LiveTrialPasses(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	subID := "s0000000-0000-0000-0000-000000000001"

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow(subID, testUserID, "p0000000-0000-0000-0000-000000000001",
				"monthly", "trial", 99,
				"pending", now, now.Add(33*24*time.Hour),
				now, now.Add(2*24*time.Hour), true))

	r := gateRouter(true, CheckSubscriptionAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, true, body["granted"])
	assert.Equal(t, subID, body["subscriptionId"])
}

func TestCheckSubscriptionAccess_ExpiredPaidSubscription(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow("s0000000-0000-0000-0000-000000000001", testUserID,
				"p0000000-0000-0000-0000-000000000001", "monthly", "active", 99,
				"completed", now.Add(-40*24*time.Hour), now.Add(-10*24*time.Hour),
				now.Add(-43*24*time.Hour), now.Add(-40*24*time.Hour), false))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "user_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := gateRouter(true, CheckSubscriptionAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, true, body["subscriptionExpired"])
}

func TestCheckEnrollmentAccess_LivePasses(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow("s0000000-0000-0000-0000-000000000001", testUserID,
				"p0000000-0000-0000-0000-000000000001", "monthly", "active", 99,
				"completed", now, now.Add(20*24*time.Hour),
				now.Add(-10*24*time.Hour), now.Add(-7*24*time.Hour), false))

	r := gateRouter(true, CheckEnrollmentAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCheckEnrollmentAccess_NoSubscription(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := gateRouter(true, CheckEnrollmentAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, true, body["requiresSubscription"])
}

func TestCheckEnrollmentAccess_LapsedWritesNothing(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "user_subscriptions" WHERE user_id = (.+)`).
		WillReturnRows(subscriptionRows(mock).
			AddRow("s0000000-0000-0000-0000-000000000001", testUserID,
				"p0000000-0000-0000-0000-000000000001", "monthly", "trial", 99,
				"pending", now.Add(-5*24*time.Hour), now.Add(28*24*time.Hour),
				now.Add(-5*24*time.Hour), now.Add(-2*24*time.Hour), true))

	r := gateRouter(true, CheckEnrollmentAccess())

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The enrollment gate is read-only: no UPDATE was issued
	assert.NoError(t, mock.ExpectationsWereMet())
}
