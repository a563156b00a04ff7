package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/routes"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/utils"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	utils.InitJWTSecret()

	database.InitDB()

	if err := database.DB.AutoMigrate(
		&models.Access{},
		&models.Camera{},
		&models.ParkingSpot{},
		&models.StaffMember{},
		&models.ParkingRecord{},
		&models.Setting{},
		&models.User{},
	); err != nil {
		log.Fatalf("Failed to run database migration: %v", err)
	}
	log.Println("Database migration completed")

	services.EnsureAdminExists()

	services.UpgradePlaintextPasswords()

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	r := gin.Default()

	api := r.Group("/api")
	{
		routes.Path(api)
	}

	c := cron.New()

	// Reconcile occupancy flags against open records (every 5 minutes).
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("Reconciling parking spot occupancy...")
		if err := services.SyncSpotOccupancy(); err != nil {
			log.Printf("Failed to reconcile spot occupancy: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule occupancy reconciliation cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
