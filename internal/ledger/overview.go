// Package ledger assembles derived dashboard views over the store: per-
// customer balances, last activity, sorting, and the total-to-collect
// aggregate.
package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/adityaprk/khatabook/internal/models"
	"github.com/adityaprk/khatabook/internal/storage"
)

// Sort selects the dashboard ordering.
type Sort string

const (
	SortBalanceHigh Sort = "bal_high"  // balance descending
	SortBalanceLow  Sort = "bal_low"   // balance ascending
	SortDateDesc    Sort = "date_desc" // most recent activity first
	SortDateAsc     Sort = "date_asc"  // oldest activity first
)

// ParseSort maps a query parameter to a Sort, defaulting to most recent
// activity first for anything unrecognized.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortBalanceHigh, SortBalanceLow, SortDateDesc, SortDateAsc:
		return Sort(s)
	}
	return SortDateDesc
}

// Overview builds the dashboard: every customer matching query, each with a
// freshly derived balance and last activity, sorted in memory, plus the
// total to collect. The total counts only positive balances; customers who
// owe nothing or are overpaid contribute zero, never a negative offset.
func Overview(ctx context.Context, store storage.Store, query string, by Sort) ([]models.CustomerSummary, float64, error) {
	customers, err := store.ListCustomers(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	summaries := make([]models.CustomerSummary, 0, len(customers))
	var totalToCollect float64
	for _, c := range customers {
		balance, err := store.Balance(ctx, c.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to compute balance for customer %d: %w", c.ID, err)
		}
		lastActivity, err := store.LastActivity(ctx, c.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get last activity for customer %d: %w", c.ID, err)
		}

		summaries = append(summaries, models.CustomerSummary{
			Customer:     c,
			Balance:      balance,
			LastActivity: lastActivity,
		})
		if balance > 0 {
			totalToCollect += balance
		}
	}

	sortSummaries(summaries, by)
	return summaries, totalToCollect, nil
}

// sortSummaries orders the dashboard rows in memory, after balances are
// computed. Customer id breaks ties so the order is deterministic.
func sortSummaries(summaries []models.CustomerSummary, by Sort) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch by {
		case SortBalanceHigh:
			if a.Balance != b.Balance {
				return a.Balance > b.Balance
			}
		case SortBalanceLow:
			if a.Balance != b.Balance {
				return a.Balance < b.Balance
			}
		case SortDateAsc:
			if !a.LastActivity.Equal(b.LastActivity) {
				return a.LastActivity.Before(b.LastActivity)
			}
		default: // SortDateDesc
			if !a.LastActivity.Equal(b.LastActivity) {
				return a.LastActivity.After(b.LastActivity)
			}
		}
		return a.ID < b.ID
	})
}
