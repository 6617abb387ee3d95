// Package models defines the core domain models for the khatabook ledger.
package models

import "time"

// Customer represents a person whose running balance the ledger owner tracks.
// Names and phone numbers are free-form; duplicates are allowed.
type Customer struct {
	// ID is the unique identifier, assigned by storage at creation.
	ID int64

	// Name is the display name of the customer.
	Name string

	// Phone is the customer's phone number, stored as entered.
	Phone string
}

// CustomerSummary is one dashboard row: a customer together with their
// derived balance and the date of their most recent transaction.
type CustomerSummary struct {
	Customer

	// Balance is derived from the customer's transactions on every read.
	// Positive means the ledger owner is owed money.
	Balance float64

	// LastActivity is the most recent transaction date, or the Unix epoch
	// when the customer has no transactions yet.
	LastActivity time.Time
}
