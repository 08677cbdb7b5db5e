// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/paytracker-backend/config"
	"github.com/fadhlanhapp/paytracker-backend/handlers"
	"github.com/fadhlanhapp/paytracker-backend/repository"
	"github.com/fadhlanhapp/paytracker-backend/routes"
	"github.com/fadhlanhapp/paytracker-backend/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize New Relic
	var app *newrelic.Application
	if cfg.NewRelic.LicenseKey != "" {
		app, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		}
	}

	// Initialize the ledger store. A store that fails to open leaves the
	// server running in degraded mode; store calls then fail with 500.
	store, degraded := openLedgerStore(cfg.Database)
	defer repository.CloseDB()

	// Initialize services
	calculator := services.NewCalculator(cfg.Ledger.DailyRate, cfg.Ledger.Clock)
	ledgerService := services.NewLedgerService(store, calculator, cfg.Ledger.Roster)
	excelService := services.NewExcelService(ledgerService)
	paymentHandler := handlers.NewPaymentHandler(ledgerService, excelService)

	// Set up Gin router
	router := gin.Default()

	// Add New Relic middleware
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	// Configure CORS
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	routes.SetupRoutes(router, paymentHandler, degraded)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s (daily rate %s, roster %v, clock %s)...",
			cfg.Server.Port, cfg.Ledger.DailyRate, cfg.Ledger.Roster, cfg.Ledger.Clock)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if app != nil {
		app.Shutdown(5 * time.Second)
	}

	log.Println("Server stopped")
}

func openLedgerStore(cfg config.DatabaseConfig) (repository.LedgerStore, bool) {
	if cfg.Driver == "memory" {
		log.Println("Using in-memory ledger store; payments will not survive a restart")
		return repository.NewMemoryRepository(), false
	}

	if err := repository.InitDB(cfg); err != nil {
		log.Printf("Error: failed to initialize database: %v", err)
		return repository.NewPaymentRepository(nil), true
	}
	return repository.NewPaymentRepository(repository.GetDB()), false
}

func corsConfig(origins []string) cors.Config {
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
