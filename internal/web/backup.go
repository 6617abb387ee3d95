package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adityaprk/khatabook/internal/middleware"
	"github.com/adityaprk/khatabook/internal/statement"
	"github.com/adityaprk/khatabook/internal/storage"
)

// maxRestoreBytes caps restore uploads at 64 MiB.
const maxRestoreBytes = 64 << 20

// DownloadStatement streams a customer's CSV statement as an attachment.
func (h *Handler) DownloadStatement(w http.ResponseWriter, r *http.Request) {
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
		slog.Error("failed to load customer for statement", "customer_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	transactions, err := h.store.ListTransactions(r.Context(), id)
	if err != nil {
		slog.Error("failed to list transactions for statement", "customer_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	balance, err := h.store.Balance(r.Context(), id)
	if err != nil {
		slog.Error("failed to compute balance for statement", "customer_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statement.Filename(customer)))
	if err := statement.WriteCSV(w, transactions, balance); err != nil {
		slog.Error("failed to write statement", "customer_id", id, "error", err)
	}
}

// DownloadDB streams a consistent snapshot of the database file.
func (h *Handler) DownloadDB(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("backup_khatabook_%s.db", time.Now().Format("2006-01-02_15-04"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.store.Snapshot(r.Context(), w); err != nil {
		slog.Error("failed to snapshot database", "error", err)
	}
}

// RestoreDB replaces the database with an uploaded file. Only the filename
// suffix is validated; a corrupt upload surfaces on the next query, which
// matches the scope of this single-tenant tool.
func (h *Handler) RestoreDB(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		setFlash(w, "Upload too large or malformed")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		setFlash(w, "Choose a backup file to restore")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".db") {
		setFlash(w, "Backup file must have a .db extension")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.store.Restore(r.Context(), file); err != nil {
		slog.Error("failed to restore database", "filename", header.Filename, "error", err)
		setFlash(w, "Restore failed, the previous data is untouched")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	slog.Info("database restored",
		"filename", header.Filename,
		"size", header.Size,
		"user", middleware.CurrentUser(r.Context()),
	)
	setFlash(w, "Database restored")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
