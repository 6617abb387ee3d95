package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/adityaprk/khatabook/internal/ledger"
	"github.com/adityaprk/khatabook/internal/middleware"
	"github.com/adityaprk/khatabook/internal/models"
	"github.com/adityaprk/khatabook/internal/storage"
)

// dashboardData feeds the index template.
type dashboardData struct {
	User           string
	Customers      []models.CustomerSummary
	TotalToCollect float64
	Query          string
	Sort           string
	Flash          string
}

// customerPageData feeds the customer detail template.
type customerPageData struct {
	User         string
	Customer     *models.Customer
	Transactions []models.Transaction
	Balance      float64
	Flash        string
}

// Dashboard lists customers with derived balances, the optional q filter,
// and the selected sort.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	sortBy := ledger.ParseSort(r.URL.Query().Get("sort"))

	summaries, total, err := ledger.Overview(r.Context(), h.store, query, sortBy)
	if err != nil {
		slog.Error("failed to build dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "index.html", dashboardData{
		User:           middleware.CurrentUser(r.Context()),
		Customers:      summaries,
		TotalToCollect: total,
		Query:          query,
		Sort:           string(sortBy),
		Flash:          popFlash(w, r),
	})
}

// AddCustomer creates a customer from the posted form.
func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "Malformed form submission")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	phone := strings.TrimSpace(r.PostFormValue("phone"))
	if name == "" {
		setFlash(w, "Customer name is required")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id, err := h.store.CreateCustomer(r.Context(), name, phone)
	if err != nil {
		slog.Error("failed to create customer", "error", err)
		setFlash(w, "Could not save the customer, try again")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	slog.Info("customer created", "customer_id", id, "user", middleware.CurrentUser(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CustomerPage renders a customer's detail view: transactions newest first
// and the derived balance.
func (h *Handler) CustomerPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to load customer", "customer_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	transactions, err := h.store.ListTransactions(r.Context(), id)
	if err != nil {
		slog.Error("failed to list transactions", "customer_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	balance, err := h.store.Balance(r.Context(), id)
	if err != nil {
		slog.Error("failed to compute balance", "customer_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "customer.html", customerPageData{
		User:         middleware.CurrentUser(r.Context()),
		Customer:     customer,
		Transactions: transactions,
		Balance:      balance,
		Flash:        popFlash(w, r),
	})
}

// EditCustomer updates a customer's name and phone.
func (h *Handler) EditCustomer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "Malformed form submission")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("customer_id"), 10, 64)
	if err != nil {
		setFlash(w, "Invalid customer id")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	phone := strings.TrimSpace(r.PostFormValue("phone"))
	if name == "" {
		setFlash(w, "Customer name is required")
		http.Redirect(w, r, customerURL(id), http.StatusSeeOther)
		return
	}

	err = h.store.UpdateCustomer(r.Context(), id, name, phone)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to update customer", "customer_id", id, "error", err)
		setFlash(w, "Could not save the customer, try again")
	}
	http.Redirect(w, r, customerURL(id), http.StatusSeeOther)
}

// DeleteCustomer removes a customer and, atomically, all of their
// transactions.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.store.DeleteCustomer(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to delete customer", "customer_id", id, "error", err)
		setFlash(w, "Could not delete the customer, try again")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	slog.Info("customer deleted", "customer_id", id, "user", middleware.CurrentUser(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func customerURL(id int64) string {
	return fmt.Sprintf("/customer/%d", id)
}
