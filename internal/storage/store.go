// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/adityaprk/khatabook/internal/models"
)

// ErrNotFound is returned when a customer or transaction id does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger persistence. This abstraction
// keeps handlers and the dashboard assembly independent of the storage
// backend.
type Store interface {
	// CreateCustomer persists a new customer and returns the assigned id.
	CreateCustomer(ctx context.Context, name, phone string) (int64, error)

	// GetCustomer retrieves a customer by id. Returns ErrNotFound if the id
	// is unknown.
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)

	// ListCustomers returns customers whose name or phone contains query,
	// case-insensitively. An empty query returns every customer.
	ListCustomers(ctx context.Context, query string) ([]models.Customer, error)

	// UpdateCustomer replaces a customer's name and phone.
	UpdateCustomer(ctx context.Context, id int64, name, phone string) error

	// DeleteCustomer removes a customer and all of its transactions as one
	// atomic unit, so a crash mid-delete cannot leave orphaned rows.
	DeleteCustomer(ctx context.Context, id int64) error

	// CreateTransaction persists a new transaction and returns the assigned
	// id. A zero Date defaults to the insertion time. The referenced
	// customer must exist.
	CreateTransaction(ctx context.Context, tx *models.Transaction) (int64, error)

	// GetTransaction retrieves a transaction by id.
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)

	// ListTransactions returns a customer's transactions ordered by date
	// descending (newest first).
	ListTransactions(ctx context.Context, customerID int64) ([]models.Transaction, error)

	// UpdateTransaction replaces a transaction's amount, kind, and
	// description. The customer linkage never changes on edit.
	UpdateTransaction(ctx context.Context, id int64, amount float64, kind models.TxKind, description string) error

	// DeleteTransaction removes a transaction and returns the id of the
	// customer that owned it, so the caller can redirect to the right view.
	DeleteTransaction(ctx context.Context, id int64) (int64, error)

	// Balance derives a customer's balance from the full transaction set:
	// sum of GAVE amounts minus sum of GOT amounts, zero when there are no
	// rows. It is recomputed on every call, never cached.
	Balance(ctx context.Context, customerID int64) (float64, error)

	// LastActivity returns the date of the customer's most recent
	// transaction, or the Unix epoch when there is none.
	LastActivity(ctx context.Context, customerID int64) (time.Time, error)

	// Snapshot writes a consistent copy of the database file to w.
	Snapshot(ctx context.Context, w io.Writer) error

	// Restore atomically replaces the database contents with the uploaded
	// file read from r.
	Restore(ctx context.Context, r io.Reader) error

	// Close releases any resources held by the store.
	Close() error
}
