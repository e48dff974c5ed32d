package main

import (
	"log"
	"os"

	"settlement-service/internal/database"
	"settlement-service/internal/handlers"
	"settlement-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Init Services
	ledgerService := services.NewLedgerService(db)
	networkService := services.NewNetworkService(db)
	commissionService := services.NewCommissionService(db, ledgerService, networkService)
	settlementService := services.NewSettlementService(db, ledgerService, commissionService, asynqClient)
	accrualService := services.NewAccrualService(db, ledgerService, asynqClient)
	planService := services.NewPlanService(db)

	// Handlers
	paymentHandler := handlers.NewPaymentHandler(settlementService, commissionService, planService)
	walletHandler := handlers.NewWalletHandler(ledgerService)
	adminHandler := handlers.NewAdminHandler(accrualService)

	// Initialize Gin
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to the Settlement service",
		})
	})

	r.POST("/payments", paymentHandler.CreatePayment)
	r.GET("/payments/pending", paymentHandler.PendingPayments)
	r.GET("/payments/:id", paymentHandler.GetPayment)
	r.POST("/payments/:id/approve", paymentHandler.ApprovePayment)
	r.POST("/payments/:id/reject", paymentHandler.RejectPayment)
	r.GET("/payments/:id/awards", paymentHandler.PaymentAwards)

	r.GET("/users/:userId/payments", paymentHandler.UserPayments)
	r.GET("/wallets/:userId", walletHandler.GetWallet)
	r.POST("/wallets/:userId/reconcile", walletHandler.ReconcileWallet)

	r.GET("/plans", paymentHandler.ListPlans)
	r.GET("/plans/:id", paymentHandler.GetPlan)

	r.POST("/admin/sweeps/interest", adminHandler.RunInterestSweep)
	r.POST("/admin/sweeps/maturity", adminHandler.RunMaturitySweep)

	// Start cron schedulers
	accrualService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
