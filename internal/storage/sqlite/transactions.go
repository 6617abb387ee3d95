package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adityaprk/khatabook/internal/models"
	"github.com/adityaprk/khatabook/internal/storage"
)

// CreateTransaction inserts a new transaction and returns the assigned id.
// A zero Date defaults to the insertion time. The foreign key rejects
// transactions against customers that do not exist.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) (int64, error) {
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}

	res, err := s.conn().ExecContext(ctx,
		"INSERT INTO transactions (customer_id, amount, kind, description, date) VALUES (?, ?, ?, ?, ?)",
		t.CustomerID, t.Amount, string(t.Kind), t.Description, t.Date.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}
	t.ID = id
	return id, nil
}

// GetTransaction retrieves a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	var (
		t    models.Transaction
		kind string
		date int64
	)
	err := s.conn().QueryRowContext(ctx,
		"SELECT id, customer_id, amount, kind, description, date FROM transactions WHERE id = ?",
		id,
	).Scan(&t.ID, &t.CustomerID, &t.Amount, &kind, &t.Description, &date)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	t.Kind = models.TxKind(kind)
	t.Date = time.Unix(date, 0).UTC()
	return &t, nil
}

// ListTransactions returns a customer's transactions newest first, with id
// as the tiebreak so same-second inserts keep a stable order.
func (s *Store) ListTransactions(ctx context.Context, customerID int64) ([]models.Transaction, error) {
	rows, err := s.conn().QueryContext(ctx,
		"SELECT id, customer_id, amount, kind, description, date FROM transactions WHERE customer_id = ? ORDER BY date DESC, id DESC",
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var (
			t    models.Transaction
			kind string
			date int64
		)
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Amount, &kind, &t.Description, &date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = models.TxKind(kind)
		t.Date = time.Unix(date, 0).UTC()
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction replaces amount, kind, and description in place. The
// owning customer is deliberately untouched.
func (s *Store) UpdateTransaction(ctx context.Context, id int64, amount float64, kind models.TxKind, description string) error {
	res, err := s.conn().ExecContext(ctx,
		"UPDATE transactions SET amount = ?, kind = ?, description = ? WHERE id = ?",
		amount, string(kind), description, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction and returns the owning customer
// id, looked up from the stored row rather than trusted from the caller.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	tx, err := s.conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID int64
	err = tx.QueryRowContext(ctx,
		"SELECT customer_id FROM transactions WHERE id = ?", id,
	).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up transaction owner: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return 0, fmt.Errorf("failed to delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return ownerID, nil
}

// Balance derives the customer's balance: sum of GAVE minus sum of GOT,
// with missing rows coalesced to zero. Always computed from the full
// transaction set.
func (s *Store) Balance(ctx context.Context, customerID int64) (float64, error) {
	var gave, got float64
	err := s.conn().QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN kind = ? THEN amount END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN amount END), 0)
		FROM transactions WHERE customer_id = ?`,
		string(models.TxGave), string(models.TxGot), customerID,
	).Scan(&gave, &got)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return gave - got, nil
}

// LastActivity returns the newest transaction date for the customer, or the
// Unix epoch sentinel when the customer has no transactions.
func (s *Store) LastActivity(ctx context.Context, customerID int64) (time.Time, error) {
	var date int64
	err := s.conn().QueryRowContext(ctx,
		"SELECT date FROM transactions WHERE customer_id = ? ORDER BY date DESC, id DESC LIMIT 1",
		customerID,
	).Scan(&date)
	if err == sql.ErrNoRows {
		return time.Unix(0, 0).UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last activity: %w", err)
	}
	return time.Unix(date, 0).UTC(), nil
}
