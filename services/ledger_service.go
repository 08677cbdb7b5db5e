package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/paytracker-backend/models"
	"github.com/fadhlanhapp/paytracker-backend/repository"
	"github.com/fadhlanhapp/paytracker-backend/utils"
)

// LedgerService handles payment logging and accrual reporting
type LedgerService struct {
	store      repository.LedgerStore
	calculator *Calculator
	roster     []string
	now        func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store repository.LedgerStore, calculator *Calculator, roster []string) *LedgerService {
	return &LedgerService{
		store:      store,
		calculator: calculator,
		roster:     roster,
		now:        time.Now,
	}
}

// Roster returns the configured payers
func (s *LedgerService) Roster() []string {
	out := make([]string, len(s.roster))
	copy(out, s.roster)
	return out
}

// DailyRate returns the rate accrual is charged at
func (s *LedgerService) DailyRate() decimal.Decimal {
	return s.calculator.DailyRate
}

// CreatePayment validates and appends a payment to the ledger
func (s *LedgerService) CreatePayment(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error) {
	name, ok := utils.ResolveName(s.roster, req.Name)
	if !ok {
		return nil, utils.NewValidationError(utils.ErrUnknownPayer).WithDetails(strings.TrimSpace(req.Name))
	}
	if req.Amount == nil {
		return nil, utils.NewValidationError(utils.ErrAmountRequired)
	}
	if err := utils.ValidateNonNegative(*req.Amount, "amount"); err != nil {
		return nil, err
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = utils.FormatDate(s.now())
	} else if _, err := utils.ParseDate(date); err != nil {
		return nil, utils.NewValidationError(utils.ErrInvalidTimestamp).WithDetails(date)
	}

	payment := &models.Payment{
		Name:   name,
		Amount: *req.Amount,
		Reason: strings.TrimSpace(req.Reason),
		Date:   date,
	}

	if err := s.store.Insert(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns the full ledger, newest first
func (s *LedgerService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.store.ListAll(ctx)
}

// Summary computes every roster member's figures as of at.
// A zero at means now.
func (s *LedgerService) Summary(ctx context.Context, at time.Time) (*models.LedgerSummary, error) {
	payments, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(payments, at)
}

func (s *LedgerService) summarize(payments []models.Payment, at time.Time) (*models.LedgerSummary, error) {
	if at.IsZero() {
		at = s.now()
	}

	entries, err := EntriesFromPayments(payments)
	if err != nil {
		return nil, err
	}

	return &models.LedgerSummary{
		DailyRate: s.calculator.DailyRate,
		AsOf:      utils.FormatDate(at),
		Clock:     s.calculator.Clock,
		People:    s.calculator.Summarize(entries, s.roster, at),
	}, nil
}
