package routes

import (
	"github.com/devxankit/eduvado-backend/gateway"
	"github.com/devxankit/eduvado-backend/handlers/subscriptions"
	"github.com/devxankit/eduvado-backend/middleware"

	"github.com/gin-gonic/gin"
)

func SubscriptionRoutes(r *gin.Engine, gw gateway.Client) {
	h := subscriptions.NewHandler(gw)

	subGroup := r.Group("/api/subscription")
	{
		// The plan catalog is public: clients show pricing before signup.
		subGroup.GET("/plans", h.GetPlans)

		authenticated := subGroup.Group("")
		authenticated.Use(middleware.JWTAuth())
		{
			authenticated.GET("/status", h.GetStatus)
			authenticated.POST("/start-trial", h.StartTrial)
			authenticated.POST("/create-payment", h.CreatePayment)
			authenticated.POST("/verify-payment", h.VerifyPayment)
			authenticated.POST("/cancel", h.CancelSubscription)
			authenticated.GET("/payments", h.GetPayments)
		}
	}
}
