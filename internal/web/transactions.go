package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/adityaprk/khatabook/internal/middleware"
	"github.com/adityaprk/khatabook/internal/models"
	"github.com/adityaprk/khatabook/internal/storage"
)

// parseAmount accepts a non-negative numeric magnitude; the direction lives
// in the kind field, never in the sign.
func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("amount must be a number")
	}
	if amount < 0 {
		return 0, errors.New("amount cannot be negative")
	}
	return amount, nil
}

// AddTransaction records a new ledger event for a customer.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "Malformed form submission")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	customerID, err := strconv.ParseInt(r.PostFormValue("customer_id"), 10, 64)
	if err != nil {
		setFlash(w, "Invalid customer id")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	amount, err := parseAmount(r.PostFormValue("amount"))
	if err != nil {
		setFlash(w, err.Error())
		http.Redirect(w, r, customerURL(customerID), http.StatusSeeOther)
		return
	}

	kind, err := models.ParseTxKind(r.PostFormValue("type"))
	if err != nil {
		setFlash(w, "Transaction type must be GAVE or GOT")
		http.Redirect(w, r, customerURL(customerID), http.StatusSeeOther)
		return
	}

	// The referenced customer must exist at insert time.
	if _, err := h.store.GetCustomer(r.Context(), customerID); errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	id, err := h.store.CreateTransaction(r.Context(), &models.Transaction{
		CustomerID:  customerID,
		Amount:      amount,
		Kind:        kind,
		Description: strings.TrimSpace(r.PostFormValue("description")),
	})
	if err != nil {
		slog.Error("failed to create transaction", "customer_id", customerID, "error", err)
		setFlash(w, "Could not save the transaction, try again")
		http.Redirect(w, r, customerURL(customerID), http.StatusSeeOther)
		return
	}

	slog.Info("transaction created",
		"transaction_id", id,
		"customer_id", customerID,
		"kind", string(kind),
		"user", middleware.CurrentUser(r.Context()),
	)
	http.Redirect(w, r, customerURL(customerID), http.StatusSeeOther)
}

// EditTransaction updates a transaction's amount, kind, and description.
// The redirect target is derived from the stored row's owner, not from any
// client-supplied field, so a forged form cannot bounce the user to a
// different customer.
func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "Malformed form submission")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("transaction_id"), 10, 64)
	if err != nil {
		setFlash(w, "Invalid transaction id")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	stored, err := h.store.GetTransaction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to load transaction", "transaction_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	target := customerURL(stored.CustomerID)

	amount, err := parseAmount(r.PostFormValue("amount"))
	if err != nil {
		setFlash(w, err.Error())
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	kind, err := models.ParseTxKind(r.PostFormValue("type"))
	if err != nil {
		setFlash(w, "Transaction type must be GAVE or GOT")
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	description := strings.TrimSpace(r.PostFormValue("description"))
	if err := h.store.UpdateTransaction(r.Context(), id, amount, kind, description); err != nil {
		slog.Error("failed to update transaction", "transaction_id", id, "error", err)
		setFlash(w, "Could not save the transaction, try again")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// DeleteTransaction removes a transaction and redirects to the customer it
// belonged to.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ownerID, err := h.store.DeleteTransaction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to delete transaction", "transaction_id", id, "error", err)
		setFlash(w, "Could not delete the transaction, try again")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	slog.Info("transaction deleted",
		"transaction_id", id,
		"customer_id", ownerID,
		"user", middleware.CurrentUser(r.Context()),
	)
	http.Redirect(w, r, customerURL(ownerID), http.StatusSeeOther)
}
