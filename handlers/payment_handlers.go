package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/paytracker-backend/models"
	"github.com/fadhlanhapp/paytracker-backend/services"
	"github.com/fadhlanhapp/paytracker-backend/utils"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	ledgerService *services.LedgerService
	excelService  *services.ExcelService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(ledgerService *services.LedgerService, excelService *services.ExcelService) *PaymentHandler {
	return &PaymentHandler{
		ledgerService: ledgerService,
		excelService:  excelService,
	}
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.ledgerService.ListPayments(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, payments)
}

// CreatePayment handles POST /payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest).WithDetails(err.Error()))
		return
	}

	payment, err := h.ledgerService.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, payment)
}

// GetSummary handles GET /payments/summary
func (h *PaymentHandler) GetSummary(c *gin.Context) {
	var at time.Time
	if raw := strings.TrimSpace(c.Query("at")); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidTimestamp).WithDetails(raw))
			return
		}
		at = parsed
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), at)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, summary)
}

// ExportPayments handles GET /payments/export
func (h *PaymentHandler) ExportPayments(c *gin.Context) {
	excelFile, filename, err := h.excelService.ExportLedgerToExcel(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer excelFile.Close()

	// Set headers for file download
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := excelFile.Write(c.Writer); err != nil {
		utils.HandleError(c, utils.NewInternalError(utils.ErrExportUnavailable).WithDetails(err.Error()))
		return
	}
}

// GetRoster handles GET /roster
func (h *PaymentHandler) GetRoster(c *gin.Context) {
	utils.HandleSuccess(c, models.RosterResponse{
		Roster:    h.ledgerService.Roster(),
		DailyRate: h.ledgerService.DailyRate(),
	})
}
