package main

import (
	"log"
	"os"

	"github.com/devxankit/eduvado-backend/db"
	_ "github.com/devxankit/eduvado-backend/docs"
	"github.com/devxankit/eduvado-backend/gateway"
	"github.com/devxankit/eduvado-backend/routes"
	"github.com/devxankit/eduvado-backend/services"

	"github.com/gin-gonic/gin"
)

// @title Eduvado API
// @version 1.0
// @description Subscription and course access API for the Eduvado learning platform
// @host localhost:5000
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	cronService := services.NewSubscriptionCronService(db.DB)
	cronService.Start()
	defer cronService.Stop()

	gw := gateway.NewRazorpayClient()

	r := routes.SetupRouter(gw)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}
