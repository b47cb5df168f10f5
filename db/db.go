package db

import (
	"os"

	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/utils"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		utils.LogError(err, "Warning: Impossible to load the .env file")
		utils.LogInfo("The environment variable DB_URL must be defined in the system environment")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		utils.LogError(nil, "Variable DB_URL is not defined")
		panic("Database URL is not configured")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         utils.GetGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		utils.LogError(err, "Error connecting to the database")
		panic("Could not connect to the database")
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.Payment{},
	)
	if err != nil {
		utils.LogError(err, "Error migrating database")
		panic("Could not migrate database")
	}

	// A user may hold at most one trial/active subscription at a time. The
	// lifecycle handlers check this before writing, but the partial index
	// makes a concurrent double-start a constraint violation instead of a
	// duplicate row.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_subscriptions_one_open
		ON user_subscriptions (user_id)
		WHERE status IN ('trial', 'active')`).Error
	if err != nil {
		utils.LogError(err, "Error creating subscription uniqueness index")
		panic("Could not create subscription uniqueness index")
	}

	// Likewise at most one order may be out with the gateway per
	// subscription. The handler checks before creating one, but only this
	// index stops two concurrent create-payment calls from both minting an
	// order and overwriting each other's razorpay_order_id.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_one_open_order
		ON payments (subscription_id)
		WHERE status IN ('created', 'authorized')`).Error
	if err != nil {
		utils.LogError(err, "Error creating payment order uniqueness index")
		panic("Could not create payment order uniqueness index")
	}

	utils.LogSuccess("Database connection successful")
}
