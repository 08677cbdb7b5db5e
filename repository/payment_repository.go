package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fadhlanhapp/paytracker-backend/models"
)

// PaymentRepository is the PostgreSQL ledger store
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository. A nil db yields a
// repository that reports ErrStoreUnavailable instead of panicking.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Insert appends a payment record and sets its ID
func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}

	query := `
		INSERT INTO payments (name, amount, reason, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, payment.Name, payment.Amount,
		nullString(payment.Reason), payment.Date).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListAll retrieves all payments ordered by id, newest first
func (r *PaymentRepository) ListAll(ctx context.Context) ([]models.Payment, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}

	query := `
		SELECT id, name, amount, reason, date
		FROM payments
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var payment models.Payment
		var name, reason, date sql.NullString
		if err := rows.Scan(&payment.ID, &name, &payment.Amount, &reason, &date); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Name = name.String
		payment.Reason = reason.String
		payment.Date = date.String
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
