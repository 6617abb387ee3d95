package models

import (
	"fmt"
	"time"
)

// TxKind is the direction of a ledger transaction from the owner's point
// of view.
type TxKind string

const (
	// TxGave means the owner gave money; it increases what the customer owes.
	TxGave TxKind = "GAVE"
	// TxGot means the owner received money; it decreases what the customer owes.
	TxGot TxKind = "GOT"
)

// ParseTxKind validates a client-supplied kind string.
func ParseTxKind(s string) (TxKind, error) {
	switch TxKind(s) {
	case TxGave:
		return TxGave, nil
	case TxGot:
		return TxGot, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Label returns the human-readable form used on statements.
func (k TxKind) Label() string {
	if k == TxGave {
		return "You Gave"
	}
	return "You Received"
}

// Transaction is one dated ledger event against a customer. The amount is a
// non-negative magnitude; the direction is carried by Kind.
type Transaction struct {
	// ID is the unique identifier, assigned by storage at creation.
	ID int64

	// CustomerID references the owning customer, which must exist at
	// insert time.
	CustomerID int64

	// Amount is the transaction magnitude. Never negative.
	Amount float64

	// Kind is TxGave or TxGot.
	Kind TxKind

	// Description is optional free text.
	Description string

	// Date is when the transaction happened. Storage defaults it to the
	// insertion time when zero.
	Date time.Time
}
