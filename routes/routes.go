package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/paytracker-backend/handlers"
)

// SetupRoutes configures all API routes for the application.
// degraded is reported by the health check when the ledger store failed to open.
func SetupRoutes(router *gin.Engine, paymentHandler *handlers.PaymentHandler, degraded bool) {
	// Payment endpoints
	payments := router.Group("/payments")
	{
		payments.GET("", paymentHandler.ListPayments)
		payments.POST("", paymentHandler.CreatePayment)
		payments.GET("/summary", paymentHandler.GetSummary)
		payments.GET("/export", paymentHandler.ExportPayments)
	}

	router.GET("/roster", paymentHandler.GetRoster)

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if degraded {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})
}
