package repository

import (
	"context"
	"errors"

	"github.com/fadhlanhapp/paytracker-backend/models"
)

// ErrStoreUnavailable is returned by every operation when the store could not be opened
var ErrStoreUnavailable = errors.New("ledger store unavailable")

// LedgerStore is the durable, append-only record of payments
type LedgerStore interface {
	// Insert stores payment and sets its ID to the store-assigned value
	Insert(ctx context.Context, payment *models.Payment) error
	// ListAll returns every payment, newest (highest ID) first
	ListAll(ctx context.Context) ([]models.Payment, error)
}
