package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adityaprk/khatabook/internal/models"
	"github.com/adityaprk/khatabook/internal/storage"
)

// CreateCustomer inserts a new customer and returns the assigned id.
func (s *Store) CreateCustomer(ctx context.Context, name, phone string) (int64, error) {
	res, err := s.conn().ExecContext(ctx,
		"INSERT INTO customers (name, phone) VALUES (?, ?)",
		name, phone,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get customer id: %w", err)
	}
	return id, nil
}

// GetCustomer retrieves a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	err := s.conn().QueryRowContext(ctx,
		"SELECT id, name, phone FROM customers WHERE id = ?",
		id,
	).Scan(&customer.ID, &customer.Name, &customer.Phone)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// ListCustomers returns customers matching the query on name or phone,
// case-insensitively. SQLite's LIKE is already case-insensitive for ASCII.
func (s *Store) ListCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		pattern := "%" + query + "%"
		rows, err = s.conn().QueryContext(ctx,
			"SELECT id, name, phone FROM customers WHERE name LIKE ? OR phone LIKE ? ORDER BY id",
			pattern, pattern,
		)
	} else {
		rows, err = s.conn().QueryContext(ctx,
			"SELECT id, name, phone FROM customers ORDER BY id",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

// UpdateCustomer replaces a customer's name and phone.
func (s *Store) UpdateCustomer(ctx context.Context, id int64, name, phone string) error {
	res, err := s.conn().ExecContext(ctx,
		"UPDATE customers SET name = ?, phone = ? WHERE id = ?",
		name, phone, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCustomer removes a customer and all of its transactions inside one
// sql transaction; either both deletes commit or neither does.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	tx, err := s.conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE customer_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete customer transactions: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
