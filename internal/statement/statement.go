// Package statement renders a customer's transaction history as a CSV
// statement.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/adityaprk/khatabook/internal/models"
)

// dateFormat is how transaction dates appear on statements.
const dateFormat = "2006-01-02 15:04:05"

// WriteCSV streams the statement for one customer: a header, one row per
// transaction in exactly the order given (callers pass the store's
// descending-date order; no re-sort happens here), a blank separator row,
// and a net-balance summary row.
func WriteCSV(w io.Writer, transactions []models.Transaction, balance float64) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Description", "Type", "Amount", "Balance Context"}); err != nil {
		return fmt.Errorf("failed to write statement header: %w", err)
	}

	for _, t := range transactions {
		row := []string{
			t.Date.Format(dateFormat),
			t.Description,
			string(t.Kind),
			formatAmount(t.Amount),
			t.Kind.Label(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write statement row: %w", err)
		}
	}

	if err := cw.Write([]string{""}); err != nil {
		return fmt.Errorf("failed to write separator row: %w", err)
	}
	if err := cw.Write([]string{"", "", "NET BALANCE", formatAmount(balance)}); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the download filename for a customer's statement.
func Filename(customer *models.Customer) string {
	return fmt.Sprintf("statement_%s.csv", customer.Name)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
