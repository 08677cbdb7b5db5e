package repository

import (
	"context"
	"sync"

	"github.com/fadhlanhapp/paytracker-backend/models"
)

// MemoryRepository keeps the ledger in process memory. It backs the
// "memory" ledger driver and the tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	payments []models.Payment
	nextID   int64
}

// NewMemoryRepository creates an empty in-memory ledger
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// Insert appends a payment and assigns the next sequence number
func (r *MemoryRepository) Insert(ctx context.Context, payment *models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	payment.ID = r.nextID
	r.nextID++
	r.payments = append(r.payments, *payment)
	return nil
}

// ListAll returns a copy of the ledger, newest first
func (r *MemoryRepository) ListAll(ctx context.Context) ([]models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Payment, 0, len(r.payments))
	for i := len(r.payments) - 1; i >= 0; i-- {
		out = append(out, r.payments[i])
	}
	return out, nil
}
