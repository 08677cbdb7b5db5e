package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, matching what the tracker UI posts.
	decimal.MarshalJSONWithoutQuotes = true
}

// Payment represents a cash payment logged against one payer.
// Records are append-only: once stored they are never updated or deleted.
type Payment struct {
	ID     int64           `json:"id" db:"id"`
	Name   string          `json:"name" db:"name"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	Reason string          `json:"reason" db:"reason"`
	Date   string          `json:"date" db:"date"`
}

// PaymentRequest represents the request body for logging a payment
type PaymentRequest struct {
	Name   string           `json:"name" binding:"required"`
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
	Date   string           `json:"date"`
}

// PersonSummary holds the accrual figures for one payer
type PersonSummary struct {
	Name       string          `json:"name"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Expected   decimal.Decimal `json:"expected"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	MissedDays int64           `json:"missed_days"`
	Since      string          `json:"since,omitempty"`
}

// LedgerSummary is the per-roster accrual report at a point in time
type LedgerSummary struct {
	DailyRate decimal.Decimal `json:"daily_rate"`
	AsOf      string          `json:"as_of"`
	Clock     string          `json:"clock"`
	People    []PersonSummary `json:"people"`
}

// RosterResponse lists the configured payers
type RosterResponse struct {
	Roster    []string        `json:"roster"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}
