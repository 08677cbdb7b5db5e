// Package tracker keeps a client-side copy of the ledger. New payments show up
// immediately and are confirmed against the backend in the background.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/paytracker-backend/models"
	"github.com/fadhlanhapp/paytracker-backend/services"
	"github.com/fadhlanhapp/paytracker-backend/utils"
)

// Status is the confirmation state of a local entry
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

var (
	ErrEmptyAmount   = errors.New("amount is empty")
	ErrUnknownToken  = errors.New("unknown correlation token")
	ErrNotRetryable  = errors.New("entry has not failed")
	ErrInvalidAmount = errors.New("amount is not a number")
	ErrUnknownPayer  = errors.New("unknown payer")
)

// Entry is one payment as the session sees it. Token is set for payments
// appended through this session and stays the same after confirmation;
// Payment.ID is zero until the backend has assigned one.
type Entry struct {
	Token   string
	Payment models.Payment
	Status  Status
	Err     string
}

// Session holds the in-memory ledger of one tracker client
type Session struct {
	client     LedgerClient
	calculator *services.Calculator
	roster     []string
	now        func() time.Time

	mu      sync.Mutex
	entries []*Entry // newest first
	sends   sync.WaitGroup
}

// NewSession creates an empty session
func NewSession(client LedgerClient, calculator *services.Calculator, roster []string) *Session {
	return &Session{
		client:     client,
		calculator: calculator,
		roster:     roster,
		now:        time.Now,
	}
}

// Load fetches the ledger and replaces every confirmed entry with it.
// Entries still pending or failed stay at the head, and so do appends that
// were confirmed after the fetched list was taken.
func (s *Session) Load(ctx context.Context) error {
	payments, err := s.client.ListPayments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listed := make(map[int64]bool, len(payments))
	for _, p := range payments {
		listed[p.ID] = true
	}

	tokens := make(map[int64]string)
	entries := make([]*Entry, 0, len(payments)+len(s.entries))
	for _, e := range s.entries {
		switch {
		case e.Status != StatusConfirmed:
			entries = append(entries, e)
		case e.Token != "" && !listed[e.Payment.ID]:
			entries = append(entries, e)
		case e.Token != "":
			tokens[e.Payment.ID] = e.Token
		}
	}
	for _, p := range payments {
		entries = append(entries, &Entry{Token: tokens[p.ID], Payment: p, Status: StatusConfirmed})
	}
	s.entries = entries
	return nil
}

// Append records a payment locally and sends it to the backend in the
// background. It returns the correlation token of the new entry. The local
// entry is never rolled back; a failed send leaves it marked failed.
func (s *Session) Append(ctx context.Context, name, amount, reason string) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", ErrEmptyAmount
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	canonical, ok := utils.ResolveName(s.roster, name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPayer, strings.TrimSpace(name))
	}

	entry := &Entry{
		Token: uuid.NewString(),
		Payment: models.Payment{
			Name:   canonical,
			Amount: value,
			Reason: strings.TrimSpace(reason),
			Date:   utils.FormatDate(s.now()),
		},
		Status: StatusPending,
	}

	s.mu.Lock()
	s.entries = append([]*Entry{entry}, s.entries...)
	s.mu.Unlock()

	s.send(ctx, entry.Token, entry.Payment)
	return entry.Token, nil
}

// Retry re-sends a failed entry
func (s *Session) Retry(ctx context.Context, token string) error {
	s.mu.Lock()
	entry := s.find(token)
	if entry == nil {
		s.mu.Unlock()
		return ErrUnknownToken
	}
	if entry.Status != StatusFailed {
		s.mu.Unlock()
		return ErrNotRetryable
	}
	entry.Status = StatusPending
	entry.Err = ""
	payment := entry.Payment
	s.mu.Unlock()

	s.send(ctx, token, payment)
	return nil
}

// Wait blocks until every background send has settled
func (s *Session) Wait() {
	s.sends.Wait()
}

// Entries returns a snapshot of the session, newest first
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

// Entry returns the entry for token
func (s *Session) Entry(token string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(token); e != nil {
		return *e, true
	}
	return Entry{}, false
}

// Summary computes the roster figures from the pending and confirmed entries.
// Failed entries are not counted until a retry succeeds.
func (s *Session) Summary(now time.Time) ([]models.PersonSummary, error) {
	s.mu.Lock()
	payments := make([]models.Payment, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Status != StatusFailed {
			payments = append(payments, e.Payment)
		}
	}
	s.mu.Unlock()

	entries, err := services.EntriesFromPayments(payments)
	if err != nil {
		return nil, err
	}
	return s.calculator.Summarize(entries, s.roster, now), nil
}

func (s *Session) send(ctx context.Context, token string, payment models.Payment) {
	// The send outlives the caller's request; only its values are kept.
	ctx = context.WithoutCancel(ctx)

	amount := payment.Amount
	req := &models.PaymentRequest{
		Name:   payment.Name,
		Amount: &amount,
		Reason: payment.Reason,
		Date:   payment.Date,
	}

	s.sends.Add(1)
	go func() {
		defer s.sends.Done()

		stored, err := s.client.CreatePayment(ctx, req)
		if err != nil {
			log.Printf("Error saving payment %s: %v", token, err)
			s.fail(token, err)
			return
		}
		s.confirm(token, stored)
	}()
}

// confirm swaps the provisional entry for the stored record. If a reload
// already brought in the stored record, the provisional entry is dropped.
func (s *Session) confirm(token string, stored *models.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(token)
	if idx < 0 || s.entries[idx].Status == StatusConfirmed {
		return
	}

	for i, e := range s.entries {
		if i != idx && e.Status == StatusConfirmed && e.Payment.ID == stored.ID {
			e.Token = token
			s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
			return
		}
	}

	entry := s.entries[idx]
	entry.Payment = *stored
	entry.Status = StatusConfirmed
	entry.Err = ""
}

func (s *Session) fail(token string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(token); e != nil {
		e.Status = StatusFailed
		e.Err = err.Error()
	}
}

func (s *Session) find(token string) *Entry {
	if idx := s.index(token); idx >= 0 {
		return s.entries[idx]
	}
	return nil
}

func (s *Session) index(token string) int {
	if token == "" {
		return -1
	}
	for i, e := range s.entries {
		if e.Token == token {
			return i
		}
	}
	return -1
}
